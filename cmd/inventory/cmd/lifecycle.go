// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inventory-tool/internal/model"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	decommissionHostname string // Host to decommission (hostname or cname)
	decommissionDate     string // Effective date, YYYY-MM-DD
	decommissionReason   string // Free-text reason, logged only
	decommissionDryRun   bool   // Report without writing

	listExpiredGraceDays int // Grace override for list-expired

	cleanupGraceDays   int  // Grace override for cleanup
	cleanupDryRun      bool // Report without removing
	cleanupAutoConfirm bool // Skip the interactive prompt
	cleanupMaxHosts    int  // Cap on hosts removed per run
)

// lifecycleCmd groups the host lifecycle subcommands.
var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Manage the host lifecycle: decommission, list expired, clean up",
	Long: `Manage host state transitions in the hosts CSV. A host moves from
active to decommissioned, becomes expired once its environment's grace
period has elapsed, and is finally removed by cleanup. Every mutation
writes a timestamped backup first.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// decommissionCmd represents the lifecycle decommission command.
var decommissionCmd = &cobra.Command{
	Use:   "decommission",
	Short: "Mark a host as decommissioned",
	Long: `Mark one host as decommissioned in the hosts CSV. The host may be
addressed by hostname or cname; only the status and decommission_date cells
of the matched row change.

Examples:
  inventory-tool lifecycle decommission --hostname prd-web-01 --date 2026-08-25
  inventory-tool lifecycle decommission --hostname web01.example.com --date 2026-08-25 --reason "replaced by prd-web-09"`,
	Run: runDecommission,
}

// listExpiredCmd represents the lifecycle list-expired command.
var listExpiredCmd = &cobra.Command{
	Use:   "list-expired",
	Short: "List decommissioned hosts whose grace period has elapsed",
	Long: `List every decommissioned host whose grace period has fully elapsed,
ordered by expiry date. Read-only: nothing is removed.

Examples:
  inventory-tool lifecycle list-expired
  inventory-tool lifecycle list-expired --grace-days 0`,
	Run: runListExpired,
}

// cleanupCmd represents the lifecycle cleanup command.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Permanently remove expired hosts",
	Long: `Permanently remove expired hosts: their rows leave the hosts CSV
(after a backup) and their host_vars files are deleted. Prompts for
confirmation unless --auto-confirm is set.

Examples:
  inventory-tool lifecycle cleanup --dry-run
  inventory-tool lifecycle cleanup --auto-confirm --max-hosts 10`,
	Run: runCleanup,
}

func init() {
	rootCmd.AddCommand(lifecycleCmd)
	lifecycleCmd.AddCommand(decommissionCmd)
	lifecycleCmd.AddCommand(listExpiredCmd)
	lifecycleCmd.AddCommand(cleanupCmd)

	decommissionCmd.Flags().StringVar(&decommissionHostname, "hostname", "", "host to decommission, by hostname or cname")
	decommissionCmd.Flags().StringVar(&decommissionDate, "date", "", "decommission date (YYYY-MM-DD)")
	decommissionCmd.Flags().StringVar(&decommissionReason, "reason", "", "reason for the decommission (logged, not persisted)")
	decommissionCmd.Flags().BoolVar(&decommissionDryRun, "dry-run", false, "report without changing the CSV")
	_ = decommissionCmd.MarkFlagRequired("hostname")
	_ = decommissionCmd.MarkFlagRequired("date")

	listExpiredCmd.Flags().IntVar(&listExpiredGraceDays, "grace-days", -1, "grace period override in days for every environment (default: per-environment policy)")

	cleanupCmd.Flags().IntVar(&cleanupGraceDays, "grace-days", -1, "grace period override in days for every environment (default: per-environment policy)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report without removing anything")
	cleanupCmd.Flags().BoolVar(&cleanupAutoConfirm, "auto-confirm", false, "skip the confirmation prompt")
	cleanupCmd.Flags().IntVar(&cleanupMaxHosts, "max-hosts", 0, "maximum hosts to remove per run (0 = unlimited)")
}

// newLifecycle wires the lifecycle service for a loaded configuration.
func newLifecycle() (*service.Lifecycle, model.InventoryKey) {
	cfg, logger := loadConfig()
	repo := source.NewRepository(&cfg.Source, logger)
	policy := loadPolicy(cfg)
	return service.NewLifecycle(cfg, repo, policy, logger), repo.Key()
}

// runDecommission executes the lifecycle decommission command logic.
func runDecommission(cmd *cobra.Command, args []string) {
	lifecycle, _ := newLifecycle()

	result, err := lifecycle.Decommission(cmd.Context(),
		decommissionHostname, decommissionDate, decommissionReason, decommissionDryRun)
	if err != nil {
		fail("decommission failed", err)
	}

	if result.DryRun {
		emitResult(result, fmt.Sprintf("🔍 Dry run: %s would be decommissioned effective %s",
			result.Identity, result.Date))
		return
	}
	emitResult(result, fmt.Sprintf("✅ Host %s decommissioned effective %s\n   Backup: %s",
		result.Identity, result.Date, result.Backup))
}

// runListExpired executes the lifecycle list-expired command logic.
func runListExpired(cmd *cobra.Command, args []string) {
	lifecycle, key := newLifecycle()

	expired, err := lifecycle.ListExpired(cmd.Context(), listExpiredGraceDays)
	if err != nil {
		fail("failed to list expired hosts", err)
	}

	if jsonOutput {
		printEnvelope(envelope{Success: true, Data: expired})
		return
	}
	if quiet {
		return
	}
	if len(expired) == 0 {
		fmt.Println("✅ No expired hosts")
		return
	}
	fmt.Printf("⚠️  %d expired host(s):\n", len(expired))
	for _, e := range expired {
		fmt.Printf("   %s (%s) decommissioned %s, expired %s (%d day(s) ago, grace %d)\n",
			e.Host.Identity(key), e.Host.Environment, e.Host.DecommissionDate,
			e.ExpiryDate.Format(model.DateFormat), e.DaysExpired, e.GraceDays)
	}
}

// runCleanup executes the lifecycle cleanup command logic.
func runCleanup(cmd *cobra.Command, args []string) {
	lifecycle, _ := newLifecycle()

	result, err := lifecycle.Cleanup(cmd.Context(), service.CleanupOptions{
		GraceOverride: cleanupGraceDays,
		DryRun:        cleanupDryRun,
		AutoConfirm:   cleanupAutoConfirm,
		MaxHosts:      cleanupMaxHosts,
	})
	if err != nil {
		fail("cleanup failed", err)
	}

	switch {
	case result.DryRun && result.Cleaned > 0:
		summary := fmt.Sprintf("🔍 Dry run: %d expired host(s) would be removed", result.Cleaned)
		for _, identity := range result.Identities {
			summary += fmt.Sprintf("\n   %s", identity)
		}
		emitResult(result, summary)
	case result.Cleaned == 0:
		emitResult(result, "✅ No hosts removed")
	default:
		emitResult(result, fmt.Sprintf("🧹 Removed %d expired host(s) and %d host_vars file(s)\n   Backup: %s",
			result.Cleaned, len(result.RemovedFiles), result.Backup))
	}
}
