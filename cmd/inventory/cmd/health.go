// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inventory-tool/internal/model"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	healthThreshold float64 // Minimum passing score
	healthDetailed  bool    // List every finding instead of examples
)

// healthCmd represents the health command.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Score the inventory health",
	Long: `Score the inventory from the hosts CSV and the emitted artifacts:
host_vars coverage of active hosts minus a penalty for orphaned files,
classified into EXCELLENT/GOOD/FAIR/POOR/CRITICAL.

The command exits 2 when the score is below the threshold, so it can gate
deployment pipelines.

Examples:
  # Score against the configured threshold
  inventory-tool health

  # Stricter gate with full finding lists
  inventory-tool health --threshold 90 --detailed`,
	Run: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().Float64Var(&healthThreshold, "threshold", 70, "minimum passing score (overrides config)")
	healthCmd.Flags().BoolVar(&healthDetailed, "detailed", false, "list every orphaned, missing, and invalid file")
}

// runHealth executes the health command logic.
func runHealth(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()

	threshold := cfg.Health.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = healthThreshold
	}

	repo := source.NewRepository(&cfg.Source, logger)
	auditor := service.NewAuditor(cfg, repo, logger)

	report, err := auditor.CheckHealth(cmd.Context())
	if err != nil {
		fail("health check failed", err)
	}

	passed := report.Score >= threshold
	if jsonOutput {
		env := envelope{Success: passed, Data: report}
		if !passed {
			env.Message = fmt.Sprintf("health score %.1f is below threshold %.1f", report.Score, threshold)
		}
		printEnvelope(env)
	} else if !quiet {
		printHealthReport(report, healthDetailed)
		if !passed {
			fmt.Printf("\n❌ Health score %.1f is below threshold %.1f\n", report.Score, threshold)
		}
	}

	if !passed {
		os.Exit(2)
	}
}

// printHealthReport renders the health report for the console.
func printHealthReport(r *model.HealthReport, detailed bool) {
	icon := "✅"
	switch r.Status {
	case model.HealthFair:
		icon = "⚠️"
	case model.HealthPoor, model.HealthCritical:
		icon = "❌"
	}
	fmt.Printf("%s Inventory health: %.1f/100 (%s)\n", icon, r.Score, r.Status)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   Total hosts: %d\n", r.TotalHosts)
	fmt.Printf("   Active: %d\n", r.ActiveHosts)
	fmt.Printf("   Decommissioned: %d\n", r.DecommissionedHosts)
	fmt.Printf("   Host vars coverage: %.1f%%\n", r.Coverage)
	fmt.Printf("   Orphaned files: %d\n", len(r.OrphanedFiles))
	fmt.Printf("   Missing files: %d\n", len(r.MissingFiles))
	fmt.Printf("   Syntax errors: %d\n", len(r.SyntaxErrors))

	printFindings("Orphaned host_vars files", r.OrphanedFiles, detailed)
	printFindings("Missing host_vars files", r.MissingFiles, detailed)
	printFindings("Invalid host_vars files", r.SyntaxErrors, detailed)

	if len(r.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("💡 Recommendations:")
		for _, rec := range r.Recommendations {
			fmt.Printf("   %s\n", rec)
		}
	}
}

// printFindings lists a finding category, trimmed to the first five entries
// unless detailed output was requested.
func printFindings(title string, findings []string, detailed bool) {
	if len(findings) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("   %s:\n", title)
	shown := findings
	if !detailed {
		shown = model.Examples(findings, 5)
	}
	for _, f := range shown {
		fmt.Printf("     - %s\n", f)
	}
	if rest := len(findings) - len(shown); rest > 0 {
		fmt.Printf("     ... and %d more (use --detailed to list all)\n", rest)
	}
}
