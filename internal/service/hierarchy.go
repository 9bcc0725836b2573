// Package service provides business logic services for the inventory tool.
package service

import (
	"inventory-tool/internal/model"
)

// BuildHierarchy derives the full group hierarchy from the given hosts.
// Active hosts fan out into environment, application, product, and site
// groups; decommissioned hosts land only in the flat decommissioned group.
// Product groups nest under the host's application group, or directly under
// the environment group when the host has no application service.
func BuildHierarchy(hosts []*model.Host, key model.InventoryKey) *model.Hierarchy {
	hierarchy := model.NewHierarchy()

	for _, h := range hosts {
		identity := h.Identity(key)
		if identity == "" {
			continue
		}

		if h.IsDecommissioned() {
			hierarchy.Group(model.DecommissionedGroup).AddHost(identity)
			continue
		}

		envGroup := hierarchy.Group(model.EnvGroupName(h.Environment))
		envGroup.AddHost(identity)

		parent := envGroup
		if h.ApplicationService != "" {
			appGroup := hierarchy.Group(model.AppGroupName(h.ApplicationService))
			appGroup.AddHost(identity)
			envGroup.AddChild(appGroup.Name)
			parent = appGroup
		}

		for _, product := range h.ProductValues() {
			productGroup := hierarchy.Group(model.ProductGroupName(product))
			productGroup.AddHost(identity)
			parent.AddChild(productGroup.Name)
		}

		if h.SiteCode != "" {
			siteGroup := hierarchy.Group(model.SiteGroupName(h.SiteCode))
			siteGroup.AddHost(identity)
			envGroup.AddChild(siteGroup.Name)
		}
	}

	hierarchy.Prune()
	return hierarchy
}
