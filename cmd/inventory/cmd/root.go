// Package cmd provides CLI commands for the inventory tool.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile    string // Config file path
	logLevel   string // Log level
	csvFile    string // Source CSV file override
	jsonOutput bool   // Machine-readable JSON output
	quiet      bool   // Suppress informational output
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "inventory-tool",
	Short: "Configuration management inventory generator driven by a hosts CSV",
	Long: `inventory-tool turns a hosts CSV (the source of truth) into
configuration management inventory artifacts: one inventory file per
environment plus a host_vars file per active host.

Data flow: hosts.csv → host records → group hierarchy → inventory + host_vars

Main features:
  - Generate per-environment inventories with environment, application
    service, and product groups
  - Maintain the host lifecycle: decommission, list expired, clean up
  - Validate the CSV, the directory structure, and the emitted host_vars
  - Score inventory health and export Excel/HTML reports
  - Refresh the CSV from a CMDB export endpoint`,
	Version: Version,
	// Run displays help when called without any subcommands
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). An interrupt cancels the
// command context; commands surface the cancellation as exit code 130.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// init initializes the root command and its flags.
func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&csvFile, "csv-file", "", "hosts CSV file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON on stdout")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress informational output")

	// Customize version template
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag.
func GetLogLevel() string {
	return logLevel
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}
