// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inventory-tool/internal/model"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	validateComprehensive bool   // CSV + structure + host_vars
	validateCSVOnly       bool   // CSV checks only
	validateStructureOnly bool   // Structure checks only
	validateTemplate      bool   // Print the CSV template and exit
	validateCreateCSV     string // Write the CSV template to this file
	validateOverwrite     bool   // Allow --create-csv to replace an existing file
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the hosts CSV and the generated inventory structure",
	Long: `Validate the inventory inputs and outputs. The default run checks the
hosts CSV (duplicates, unknown environments, per-row validation) and the
directory structure (required directories, per-environment inventory files,
auto-generated banners, group_vars audit, companion tool availability).

Examples:
  # CSV + structure checks
  inventory-tool validate

  # Everything, including a host_vars scan (orphans, missing files, syntax)
  inventory-tool validate --comprehensive

  # Print a bootstrap CSV template to stdout
  inventory-tool validate --template > hosts.csv

  # Write the template to a file
  inventory-tool validate --create-csv hosts.csv`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateComprehensive, "comprehensive", false, "also scan host_vars files (orphans, missing, YAML syntax)")
	validateCmd.Flags().BoolVar(&validateCSVOnly, "csv-only", false, "check the hosts CSV only")
	validateCmd.Flags().BoolVar(&validateStructureOnly, "structure-only", false, "check the directory structure only")
	validateCmd.Flags().BoolVar(&validateTemplate, "template", false, "print the CSV template to stdout and exit")
	validateCmd.Flags().StringVar(&validateCreateCSV, "create-csv", "", "write the CSV template to the given file and exit")
	validateCmd.Flags().BoolVar(&validateOverwrite, "overwrite", false, "allow --create-csv to replace an existing file")
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	// Template modes need no configuration.
	if validateTemplate {
		if jsonOutput {
			printEnvelope(envelope{Success: true, Data: map[string]string{"template": source.Template()}})
			return
		}
		fmt.Print(source.Template())
		return
	}
	if validateCreateCSV != "" {
		if err := source.CreateTemplate(validateCreateCSV, validateOverwrite); err != nil {
			fail("failed to create CSV template", err)
		}
		emitResult(map[string]string{"file": validateCreateCSV},
			fmt.Sprintf("✅ Created CSV template: %s", validateCreateCSV))
		return
	}

	if validateCSVOnly && validateStructureOnly {
		fail("invalid flags", errors.New("--csv-only and --structure-only cannot be used together"))
	}
	if validateComprehensive && (validateCSVOnly || validateStructureOnly) {
		fail("invalid flags", errors.New("--comprehensive cannot be combined with --csv-only or --structure-only"))
	}

	cfg, logger := loadConfig()
	repo := source.NewRepository(&cfg.Source, logger)
	auditor := service.NewAuditor(cfg, repo, logger)
	ctx := cmd.Context()

	var result *model.CheckResult
	var err error
	switch {
	case validateCSVOnly:
		step("🔍 Validating hosts CSV: %s", cfg.Source.CSVFile)
		result, err = auditor.ValidateCSV(ctx)
	case validateStructureOnly:
		step("🔍 Validating inventory structure: %s", cfg.Inventory.OutputDir)
		result, err = auditor.ValidateStructure(ctx)
	case validateComprehensive:
		step("🔍 Running comprehensive validation")
		result, err = auditor.ValidateAll(ctx)
	default:
		step("🔍 Validating hosts CSV and inventory structure")
		result = model.NewCheckResult()
		var partial *model.CheckResult
		if partial, err = auditor.ValidateCSV(ctx); err == nil {
			result.Merge(partial)
			if partial, err = auditor.ValidateStructure(ctx); err == nil {
				result.Merge(partial)
			}
		}
	}
	if err != nil {
		fail("validation failed", err)
	}

	if jsonOutput {
		printEnvelope(envelope{Success: result.Valid, Data: result})
	} else if !quiet {
		printCheckResult(result)
	}
	if !result.Valid {
		os.Exit(1)
	}
}

// printCheckResult lists every finding, errors first, then the digest line.
func printCheckResult(r *model.CheckResult) {
	for _, e := range r.Errors {
		fmt.Printf("❌ %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
	if r.HasIssues() {
		fmt.Println()
	}
	fmt.Println(r.Summary())
}
