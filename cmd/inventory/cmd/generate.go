// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"github.com/spf13/cobra"

	"inventory-tool/internal/config"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	generateOutputDir    string   // Inventory output directory
	generateHostVarsDir  string   // host_vars output directory
	generateEnvironments []string // Environments to generate
	generateInventoryKey string   // Identity column (hostname or cname)
	generateDryRun       bool     // Report without writing
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate inventory and host_vars files from the hosts CSV",
	Long: `Generate the full inventory tree from the hosts CSV:
1. Load and parse the source file (invalid rows are skipped with a warning)
2. Remove orphaned host_vars files whose host left the CSV
3. Write one host_vars file per active host
4. Write one inventory file per environment with active hosts, grouped by
   environment, application service, and product
5. Write the decommissioned inventory when decommissioned hosts exist

Examples:
  # Generate everything with the default config
  inventory-tool generate

  # Generate only the production inventory into a scratch directory
  inventory-tool generate -e production -o /tmp/inventory

  # Key hosts by cname instead of hostname
  inventory-tool generate --inventory-key cname

  # Show what would be written without touching disk
  inventory-tool generate --dry-run`,
	Run: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutputDir, "output-dir", "o", "", "inventory output directory (overrides config)")
	generateCmd.Flags().StringVar(&generateHostVarsDir, "host-vars-dir", "", "host_vars output directory (overrides config)")
	generateCmd.Flags().StringSliceVarP(&generateEnvironments, "environments", "e", nil, "environments to generate, comma separated (overrides config)")
	generateCmd.Flags().StringVar(&generateInventoryKey, "inventory-key", "", "identity column: hostname or cname (overrides config)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "report what would be written without touching disk")
}

// runGenerate executes the generate command logic.
func runGenerate(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()

	if generateOutputDir != "" {
		cfg.Inventory.OutputDir = generateOutputDir
	}
	if generateHostVarsDir != "" {
		cfg.Inventory.HostVarsDir = generateHostVarsDir
	}
	if len(generateEnvironments) > 0 {
		cfg.Inventory.Environments = generateEnvironments
	}
	if generateInventoryKey != "" {
		cfg.Source.InventoryKey = generateInventoryKey
	}
	// Flag overrides must satisfy the same constraints as the config file.
	if err := config.Validate(cfg); err != nil {
		fail("invalid flags", err)
	}

	repo := source.NewRepository(&cfg.Source, logger)
	policy := loadPolicy(cfg)
	writer := service.NewArtifactWriter(cfg, policy, logger)
	generator := service.NewGenerator(cfg, repo, writer, logger, service.WithDryRun(generateDryRun))

	step("🚀 Generating inventory from %s", cfg.Source.CSVFile)
	stats, err := generator.Run(cmd.Context())
	if err != nil {
		fail("generation failed", err)
	}

	summary := stats.Summary()
	if stats.DryRun {
		summary = "🔍 Dry run, no files were written\n" + summary
	}
	emitResult(stats, summary)
}
