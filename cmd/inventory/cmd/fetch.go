// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inventory-tool/internal/client/cmdb"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	fetchForce bool // Replace the source file without confirmation
)

// fetchCmd represents the fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the hosts CSV from the CMDB export endpoint",
	Long: `Fetch the hosts CSV export from the configured CMDB endpoint and
replace the local source file with it. The payload is validated (parseable
CSV, required columns, at least one host row) and the current file is backed
up before anything is replaced.

Requires cmdb.endpoint in the configuration.

Examples:
  inventory-tool fetch
  inventory-tool fetch --force`,
	Run: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "replace the source file without confirmation")
}

// runFetch executes the fetch command logic.
func runFetch(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()
	if cfg.CMDB.Endpoint == "" {
		fail("fetch is not configured", errors.New("cmdb.endpoint is not set"))
	}

	client := cmdb.NewClient(&cfg.CMDB, logger)
	repo := source.NewRepository(&cfg.Source, logger)
	fetcher := service.NewFetcher(client, repo, logger)

	step("🌐 Fetching hosts export from %s", cfg.CMDB.Endpoint)
	result, err := fetcher.Refresh(cmd.Context(), fetchForce)
	if err != nil {
		fail("fetch failed", err)
	}

	if result.Rows == 0 {
		emitResult(result, "Fetch cancelled, source file left untouched")
		return
	}
	summary := fmt.Sprintf("✅ Source file refreshed: %d host(s), %d bytes", result.Rows, result.Bytes)
	if result.Backup != "" {
		summary += fmt.Sprintf("\n   Backup: %s", result.Backup)
	}
	emitResult(result, summary)
}
