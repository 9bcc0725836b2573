// Package source manages the CSV source of truth for the inventory tool.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inventory-tool/internal/model"
)

// TemplateHeaders returns the canonical source column order: required fields
// first, then identity, infrastructure, application, operational, and
// lifecycle fields.
func TemplateHeaders() []string {
	return []string{
		"hostname", "environment", "status", "cname", "instance",
		"site_code", "ssl_port", "application_service", "product_1",
		"product_2", "primary_application", "function", "batch_number",
		"patch_mode", "dashboard_group", "decommission_date",
	}
}

// Template returns a bootstrap CSV: canonical header, commented example rows,
// and usage notes. Comment rows parse as regular rows and are skipped by
// identity, so the template is loadable as-is.
func Template() string {
	var sb strings.Builder

	sb.WriteString(strings.Join(TemplateHeaders(), ","))
	sb.WriteString("\n")
	sb.WriteString("# Example hosts (remove # to activate):\n")
	sb.WriteString("# prd-web-use1-01,production,active,,1,use1,443,web,webapp,cdn,WebApp,frontend,1,auto,Web,\n")
	sb.WriteString("# dev-db-use1-01,development,active,,2,use1,5432,db,postgres,,Database,backend,2,manual,DB,\n")
	sb.WriteString("# tst-app-use1-01,test,active,,3,use1,8080,app,appsvc,,AppService,api,3,auto,API,\n")
	sb.WriteString("# acc-mon-use1-01,acceptance,active,,4,use1,9090,monitoring,mon,,Monitoring,infra,4,manual,Monitoring,\n")
	sb.WriteString("\n")
	sb.WriteString("# Required fields: hostname (or cname), environment\n")
	sb.WriteString("# Optional fields: all others\n")
	sb.WriteString("# Data types: instance, batch_number, and ssl_port must be integers (instance should be plain like 1,2,3)\n")
	sb.WriteString(fmt.Sprintf("# Status values: %s, %s\n", model.StatusActive, model.StatusDecommissioned))
	sb.WriteString(fmt.Sprintf("# Environment values: %s\n", strings.Join(model.EnvironmentNames(), ", ")))
	sb.WriteString(fmt.Sprintf("# Patch modes: %s, %s\n", model.PatchModeAuto, model.PatchModeManual))
	sb.WriteString("# Product columns: product_1, product_2, ... extend with product_3 and up as needed\n")

	return sb.String()
}

// CreateTemplate writes the CSV template to path. Refuses to replace an
// existing file unless overwrite is set.
func CreateTemplate(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("file %s already exists, use --overwrite to replace it", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(Template()), 0o644); err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	return nil
}
