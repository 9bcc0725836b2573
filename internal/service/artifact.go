// Package service provides business logic services for the inventory tool.
package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
)

const (
	autoGeneratedBanner = "AUTO-GENERATED FILE - DO NOT EDIT MANUALLY"
	inventorySourceLine = "Generated from enhanced CSV with CMDB and patch management integration"
	hostVarsSourceLine  = "Generated from enhanced CSV with CMDB and patch management fields"
)

// ArtifactWriter emits the generated artifacts: per-environment inventory
// documents, the decommissioned inventory, and per-host variable files.
// Every write goes through a temp file and an atomic rename.
type ArtifactWriter struct {
	outputDir    string
	hostVarsDir  string
	supportGroup string
	key          model.InventoryKey
	policy       *config.Policy
	logger       zerolog.Logger
	now          func() time.Time
}

// NewArtifactWriter creates an artifact writer from the loaded configuration.
func NewArtifactWriter(cfg *config.Config, policy *config.Policy, logger zerolog.Logger) *ArtifactWriter {
	key := model.InventoryKey(cfg.Source.InventoryKey)
	if !model.ValidInventoryKey(cfg.Source.InventoryKey) {
		key = model.KeyHostname
	}
	if policy == nil {
		policy = config.DefaultPolicy()
	}

	return &ArtifactWriter{
		outputDir:    cfg.Inventory.OutputDir,
		hostVarsDir:  cfg.Inventory.HostVarsDir,
		supportGroup: cfg.CMDB.DefaultSupportGroup,
		key:          key,
		policy:       policy,
		logger:       logger.With().Str("component", "artifact-writer").Logger(),
		now:          time.Now,
	}
}

// WriteEnvironmentInventory writes <outputDir>/<env>.yml containing the
// environment group and every group reachable from it.
func (w *ArtifactWriter) WriteEnvironmentInventory(env model.Environment, hierarchy *model.Hierarchy) (string, error) {
	envGroup := model.EnvGroupName(env)
	doc := buildGroupsDoc(envGroup, hierarchy.Subtree(envGroup), hierarchy)

	title := fmt.Sprintf("%s Environment Inventory", titleCase(string(env)))
	data, err := w.renderInventory(title, doc)
	if err != nil {
		return "", fmt.Errorf("failed to render %s inventory: %w", env, err)
	}

	path := filepath.Join(w.outputDir, string(env)+".yml")
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	w.logger.Debug().Str("file", path).Msg("environment inventory written")
	return path, nil
}

// WriteDecommissionedInventory writes <outputDir>/decommissioned.yml. The
// file is written even when no host is decommissioned, so the flat group
// stays discoverable.
func (w *ArtifactWriter) WriteDecommissionedInventory(hierarchy *model.Hierarchy) (string, error) {
	doc := buildGroupsDoc(model.DecommissionedGroup, []string{model.DecommissionedGroup}, hierarchy)

	data, err := w.renderInventory("Decommissioned Hosts Inventory", doc)
	if err != nil {
		return "", fmt.Errorf("failed to render decommissioned inventory: %w", err)
	}

	path := filepath.Join(w.outputDir, "decommissioned.yml")
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	w.logger.Debug().Str("file", path).Msg("decommissioned inventory written")
	return path, nil
}

// WriteHostVars writes the variable file for one host and returns its path.
func (w *ArtifactWriter) WriteHostVars(h *model.Host) (string, error) {
	identity := h.Identity(w.key)
	if identity == "" {
		return "", fmt.Errorf("host has no identity under key %q", w.key)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.WriteString("# Host variables for " + identity + "\n")
	buf.WriteString("# " + hostVarsSourceLine + "\n")
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w.hostVarsDoc(h)); err != nil {
		enc.Close()
		return "", fmt.Errorf("failed to render host vars for %s: %w", identity, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render host vars for %s: %w", identity, err)
	}

	path := filepath.Join(w.hostVarsDir, h.VarsFileName(w.key))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}

	return path, nil
}

// CleanupOrphans deletes host_vars files whose stem is not a known hostname
// or cname. Returns the removed file names sorted.
func (w *ArtifactWriter) CleanupOrphans(hosts []*model.Host) ([]string, error) {
	valid := identitySet(hosts)

	entries, err := os.ReadDir(w.hostVarsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read host_vars directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		if valid[strings.TrimSuffix(name, ext)] {
			continue
		}

		if err := os.Remove(filepath.Join(w.hostVarsDir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove orphaned vars file %s: %w", name, err)
		}
		removed = append(removed, name)
	}

	sort.Strings(removed)
	if len(removed) > 0 {
		w.logger.Warn().
			Int("count", len(removed)).
			Strs("examples", model.Examples(removed, 5)).
			Msg("removed orphaned host_vars files")
	}
	return removed, nil
}

// renderInventory prepends the inventory banner and encodes the group map.
func (w *ArtifactWriter) renderInventory(title string, doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.WriteString("# " + autoGeneratedBanner + "\n")
	buf.WriteString("# " + title + "\n")
	buf.WriteString("# " + inventorySourceLine + "\n")
	buf.WriteString("# Generated at: " + w.now().Format("2006-01-02 15:04:05") + "\n")
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hostVarsDoc builds the variable document for one host. Key order is fixed:
// identity, classification, CMDB discovery, patch management, then optional
// lifecycle fields and pass-through metadata, so diffs between runs reflect
// data changes only.
func (w *ArtifactWriter) hostVarsDoc(h *model.Host) *yaml.Node {
	doc := newMapNode()

	appendKV(doc, "hostname", strNode(h.Hostname))
	appendKV(doc, "cname", strNode(h.CNAME))
	appendKV(doc, "environment", strNode(string(h.Environment)))
	appendKV(doc, "application_service", strNode(h.ApplicationService))

	products := newSeqNode()
	for _, p := range h.ProductValues() {
		products.Content = append(products.Content, strNode(p))
	}
	appendKV(doc, "products", products)

	appendKV(doc, "site_code", strNode(h.SiteCode))
	appendKV(doc, "instance", numNode(h.Instance))
	appendKV(doc, "status", strNode(string(h.Status)))

	discovery := newMapNode()
	appendKV(discovery, "support_group", strNode(w.supportGroup))
	appendKV(discovery, "primary_application", strNode(h.PrimaryApplication))
	appendKV(discovery, "function", strNode(h.Function))
	appendKV(discovery, "classification", strNode(titleCase(string(h.Environment))))
	appendKV(discovery, "dashboard_group", strNode(h.DashboardGroup))
	appendKV(doc, "cmdb_discovery", discovery)

	patch := newMapNode()
	appendKV(patch, "batch_number", strNode(h.BatchNumber))
	appendKV(patch, "patch_mode", strNode(string(h.PatchMode)))
	appendKV(patch, "patching_window", strNode(w.policy.PatchWindow(h.BatchNumber)))
	appendKV(patch, "requires_reboot", boolNode(true))
	appendKV(patch, "pre_patch_checks", boolNode(true))
	appendKV(doc, "patch_management", patch)

	if h.SSLPort != "" {
		appendKV(doc, "ssl_port", numNode(h.SSLPort))
	}
	if h.DecommissionDate != "" {
		appendKV(doc, "decommission_date", strNode(h.DecommissionDate))
	}
	if tags := h.Tags(); len(tags) > 0 {
		tagsNode := newSeqNode()
		for _, tag := range tags {
			tagsNode.Content = append(tagsNode.Content, strNode(tag))
		}
		appendKV(doc, "ansible_tags", tagsNode)
	}

	metaKeys := make([]string, 0, len(h.Metadata))
	for k := range h.Metadata {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)
	for _, k := range metaKeys {
		appendKV(doc, k, strNode(h.Metadata[k]))
	}

	return doc
}

// buildGroupsDoc assembles the flat group map: an "all" node referencing the
// root group, then every named group as a sibling entry with its children and
// hosts. Keys are emitted sorted so repeated runs serialize identically.
func buildGroupsDoc(root string, groupNames []string, hierarchy *model.Hierarchy) *yaml.Node {
	doc := newMapNode()

	rootRef := newMapNode()
	appendKV(rootRef, root, newMapNode())
	allNode := newMapNode()
	appendKV(allNode, "children", rootRef)
	appendKV(doc, "all", allNode)

	sorted := make([]string, len(groupNames))
	copy(sorted, groupNames)
	sort.Strings(sorted)

	for _, name := range sorted {
		g := hierarchy.Lookup(name)
		if g == nil {
			appendKV(doc, name, newMapNode())
			continue
		}

		node := newMapNode()
		if len(g.Children) > 0 {
			children := newMapNode()
			for _, child := range g.Children {
				appendKV(children, child, newMapNode())
			}
			appendKV(node, "children", children)
		}
		if len(g.Hosts) > 0 {
			hosts := newMapNode()
			for _, host := range g.Hosts {
				appendKV(hosts, host, newMapNode())
			}
			appendKV(node, "hosts", hosts)
		}
		appendKV(doc, name, node)
	}

	return doc
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func newMapNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func newSeqNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// numNode renders the value as an integer scalar when it parses as one,
// normalizing leading zeros, and falls back to a string scalar otherwise.
func numNode(value string) *yaml.Node {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
	}
	return strNode(value)
}

func boolNode(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", value)}
}

func appendKV(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
