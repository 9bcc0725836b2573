//go:build ignore
// +build ignore

// This script generates a sample Excel report for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
	"inventory-tool/internal/report/excel"
)

func main() {
	summary := createSampleData()

	writer := excel.NewWriter(time.UTC, config.DefaultPolicy())

	outputPath := filepath.Join(".", "sample_inventory_report.xlsx")
	if err := writer.Write(summary, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Excel report generated: %s\n", outputPath)
	fmt.Println("\nReport contents:")
	fmt.Println("  - Summary: generation metadata and health score")
	fmt.Println("  - Hosts: one row per host, sorted by environment and name")
	fmt.Println("  - Environments: per-environment counts and grace periods")
	fmt.Println("\nPlease open the file to verify:")
	fmt.Println("  - Header rows are frozen and styled")
	fmt.Println("  - Active status cells have a green background")
	fmt.Println("  - Decommissioned status cells have a yellow background")
	fmt.Println("  - The health score cell color matches its tier")
	fmt.Println("  - Patch windows resolve from the batch number")
}

func createSampleData() *model.InventorySummary {
	hosts := []*model.Host{
		{
			Hostname:           "prd-web-use1-01",
			CNAME:              "web01.example.com",
			Environment:        model.Environment("production"),
			Status:             model.StatusActive,
			ApplicationService: "web",
			SiteCode:           "use1",
			Instance:           "1",
			BatchNumber:        "1",
			PatchMode:          model.PatchModeAuto,
			Products: []model.ProductEntry{
				{Column: "product_1", Index: 1, Value: "nginx"},
				{Column: "product_2", Index: 2, Value: "varnish"},
			},
		},
		{
			Hostname:           "prd-web-use1-02",
			Environment:        model.Environment("production"),
			Status:             model.StatusActive,
			ApplicationService: "web",
			SiteCode:           "use1",
			Instance:           "2",
			BatchNumber:        "2",
			PatchMode:          model.PatchModeAuto,
			Products: []model.ProductEntry{
				{Column: "product_1", Index: 1, Value: "nginx"},
			},
		},
		{
			Hostname:           "prd-db-use1-01",
			Environment:        model.Environment("production"),
			Status:             model.StatusDecommissioned,
			ApplicationService: "db",
			SiteCode:           "use1",
			DecommissionDate:   "2026-05-01",
			Products: []model.ProductEntry{
				{Column: "product_1", Index: 1, Value: "postgresql"},
			},
		},
		{
			Hostname:           "dev-app-use1-01",
			Environment:        model.Environment("development"),
			Status:             model.StatusActive,
			ApplicationService: "app",
			SiteCode:           "use1",
			BatchNumber:        "3",
			PatchMode:          model.PatchModeManual,
			Products: []model.ProductEntry{
				{Column: "product_1", Index: 1, Value: "nodejs"},
			},
		},
		{
			Hostname:    "tst-mon-use1-01",
			Environment: model.Environment("test"),
			Status:      model.StatusActive,
			// No batch number: the patch window column should read TBD.
		},
	}

	summary := model.NewInventorySummary(hosts, "hosts.csv", time.Now().UTC())
	summary.Version = "1.0.0-dev"
	summary.Health = &model.HealthReport{
		Score:               87.5,
		Status:              model.HealthStatusFor(87.5),
		TotalHosts:          5,
		ActiveHosts:         4,
		DecommissionedHosts: 1,
		Coverage:            95.0,
		OrphanedFiles:       []string{"stray-host.yml"},
		Recommendations:     []string{"1 orphaned host_vars file(s) found, 'inventory-tool generate' removes them"},
		CheckedAt:           time.Now().UTC(),
	}
	return summary
}
