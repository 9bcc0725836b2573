// Package model provides data models for the inventory tool.
package model

import (
	"regexp"
	"sort"
	"strings"
)

// Group name prefixes used when deriving groups from host attributes.
const (
	EnvGroupPrefix     = "env_"
	AppGroupPrefix     = "app_"
	ProductGroupPrefix = "product_"
	SiteGroupPrefix    = "site_"
)

// DecommissionedGroup is the flat group holding every decommissioned host.
const DecommissionedGroup = "decommissioned"

var groupNameCleaner = regexp.MustCompile(`[^a-z0-9_]`)

// CleanGroupName normalizes an attribute value into a group name fragment:
// lower-cased, every character outside [a-z0-9_] replaced with underscore.
func CleanGroupName(value string) string {
	return groupNameCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "_")
}

// EnvGroupName returns the group name for an environment.
func EnvGroupName(env Environment) string {
	return EnvGroupPrefix + CleanGroupName(string(env))
}

// AppGroupName returns the group name for an application service, or "" when
// the service is empty.
func AppGroupName(service string) string {
	if strings.TrimSpace(service) == "" {
		return ""
	}
	return AppGroupPrefix + CleanGroupName(service)
}

// ProductGroupName returns the group name for a product identifier, or ""
// when the product is empty.
func ProductGroupName(product string) string {
	if strings.TrimSpace(product) == "" {
		return ""
	}
	return ProductGroupPrefix + CleanGroupName(product)
}

// SiteGroupName returns the group name for a site code, or "" when the code
// is empty.
func SiteGroupName(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return SiteGroupPrefix + CleanGroupName(code)
}

// Group is one named inventory node: a set of member host identities and a
// set of child group names. Both sets stay sorted and free of duplicates.
type Group struct {
	Name     string   `json:"name"`
	Hosts    []string `json:"hosts,omitempty"`
	Children []string `json:"children,omitempty"`
}

// AddHost inserts a host identity, keeping the member set sorted and unique.
func (g *Group) AddHost(identity string) {
	if identity == "" {
		return
	}
	g.Hosts = insertSorted(g.Hosts, identity)
}

// AddChild inserts a child group name, keeping the child set sorted and unique.
func (g *Group) AddChild(name string) {
	if name == "" || name == g.Name {
		return
	}
	g.Children = insertSorted(g.Children, name)
}

// HasHost reports whether the identity is a member of this group.
func (g *Group) HasHost(identity string) bool {
	i := sort.SearchStrings(g.Hosts, identity)
	return i < len(g.Hosts) && g.Hosts[i] == identity
}

// Empty reports whether the group has neither members nor children.
func (g *Group) Empty() bool {
	return len(g.Hosts) == 0 && len(g.Children) == 0
}

func insertSorted(list []string, value string) []string {
	i := sort.SearchStrings(list, value)
	if i < len(list) && list[i] == value {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = value
	return list
}

// Hierarchy is the derived group structure for one generation run. It forms
// a DAG rooted at the implicit "all" node; parents are derived from host
// attributes, never user-supplied, so cycles cannot occur.
type Hierarchy struct {
	groups map[string]*Group
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{groups: make(map[string]*Group)}
}

// Group returns the named group, creating it on first use.
func (h *Hierarchy) Group(name string) *Group {
	g, ok := h.groups[name]
	if !ok {
		g = &Group{Name: name}
		h.groups[name] = g
	}
	return g
}

// Lookup returns the named group or nil when absent.
func (h *Hierarchy) Lookup(name string) *Group {
	return h.groups[name]
}

// Names returns all group names in sorted order.
func (h *Hierarchy) Names() []string {
	names := make([]string, 0, len(h.groups))
	for name := range h.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of groups.
func (h *Hierarchy) Len() int {
	return len(h.groups)
}

// Prune removes groups with no members and no children, repeating until the
// structure is stable, and drops dangling child references along the way.
func (h *Hierarchy) Prune() {
	for {
		removed := false
		for name, g := range h.groups {
			if g.Empty() {
				delete(h.groups, name)
				removed = true
			}
		}
		for _, g := range h.groups {
			kept := g.Children[:0]
			for _, child := range g.Children {
				if _, ok := h.groups[child]; ok {
					kept = append(kept, child)
				}
			}
			g.Children = kept
		}
		if !removed {
			return
		}
	}
}

// Subtree returns the sorted names of all groups reachable from root,
// including root itself. An absent root yields nil.
func (h *Hierarchy) Subtree(root string) []string {
	if h.Lookup(root) == nil {
		return nil
	}

	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		g := h.groups[name]
		if g == nil {
			continue
		}
		for _, child := range g.Children {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesWithPrefix returns the sorted group names carrying the given prefix.
func (h *Hierarchy) NamesWithPrefix(prefix string) []string {
	var names []string
	for name := range h.groups {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
