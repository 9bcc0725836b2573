// Package cmd implements CLI commands for the inventory tool.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inventory-tool/internal/model"
	"inventory-tool/internal/report"
	"inventory-tool/internal/service"
	"inventory-tool/internal/source"
)

// Command flags
var (
	reportFormats   []string // Output formats (excel, html)
	reportOutputDir string   // Output directory for reports
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the inventory as Excel and HTML reports",
	Long: `Export a snapshot of the hosts CSV, enriched with the current health
check, as Excel and/or HTML reports. The filename comes from the configured
template; {{.Date}} expands to today's date in the report timezone.

Examples:
  # All configured formats into the configured directory
  inventory-tool report

  # Excel only, into a scratch directory
  inventory-tool report --formats excel --output-dir /tmp/reports`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringSliceVar(&reportFormats, "formats", nil, "report formats, comma separated (excel,html; overrides config)")
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "", "report output directory (overrides config)")
}

// reportFiles is the structured payload for report --json.
type reportFiles struct {
	Files []string `json:"files"`
}

// runReport executes the report command logic.
func runReport(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()
	ctx := cmd.Context()

	formats := cfg.Report.Formats
	if len(reportFormats) > 0 {
		formats = reportFormats
	}
	outputDir := cfg.Report.OutputDir
	if reportOutputDir != "" {
		outputDir = reportOutputDir
	}

	repo := source.NewRepository(&cfg.Source, logger)
	policy := loadPolicy(cfg)

	step("📊 Collecting inventory data from %s", cfg.Source.CSVFile)
	table, err := repo.Load(ctx)
	if err != nil {
		fail("failed to load source file", err)
	}

	hosts := make([]*model.Host, 0, len(table.Rows))
	for _, row := range table.Rows {
		h, err := model.ParseHost(row.Fields, repo.Key())
		if err != nil {
			logger.Warn().Int("line", row.Line).Err(err).Msg("⚠️ skipping invalid row")
			continue
		}
		hosts = append(hosts, h)
	}
	if len(hosts) == 0 {
		fail("nothing to report", fmt.Errorf("no valid host records in %s", cfg.Source.CSVFile))
	}

	summary := model.NewInventorySummary(hosts, cfg.Source.CSVFile, time.Now())
	summary.Version = Version

	// The health section is best effort: a report without it is still useful.
	auditor := service.NewAuditor(cfg, repo, logger)
	if health, err := auditor.CheckHealth(ctx); err != nil {
		logger.Warn().Err(err).Msg("health check failed, report will omit the health section")
	} else {
		summary.Health = health
	}

	timezone := resolveTimezone(cfg.Report.Timezone, logger)
	registry := report.NewRegistry(timezone, policy, cfg.Report.HTMLTemplate)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fail("failed to create output directory", err)
	}

	step("📄 Writing reports:")
	base := reportFilename(cfg.Report.FilenameTemplate, timezone)
	var written []string
	failures := 0
	for _, format := range formats {
		writer, err := registry.Get(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "   ❌ %v\n", err)
			failures++
			continue
		}

		ext := "." + format
		if format == "excel" {
			ext = ".xlsx"
		}
		path := filepath.Join(outputDir, base+ext)

		if err := writer.Write(summary, path); err != nil {
			logger.Error().Err(err).Str("format", format).Str("path", path).Msg("failed to write report")
			fmt.Fprintf(os.Stderr, "   ❌ %s report failed: %v\n", format, err)
			failures++
			continue
		}
		logger.Info().Str("format", format).Str("path", path).Msg("report written")
		step("   ✅ %s", path)
		written = append(written, path)
	}

	if failures > 0 {
		fail("report generation incomplete", fmt.Errorf("%d of %d format(s) failed", failures, len(formats)))
	}
	emitResult(reportFiles{Files: written}, fmt.Sprintf("📊 %d report(s) written to %s", len(written), outputDir))
}

// resolveTimezone loads the configured report timezone, falling back to UTC.
func resolveTimezone(name string, logger zerolog.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	timezone, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Str("timezone", name).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return timezone
}

// reportFilename creates a filename from the template.
// Supports the {{.Date}} placeholder for the current date.
func reportFilename(template string, timezone *time.Location) string {
	if template == "" {
		template = "inventory_report_{{.Date}}"
	}

	dateStr := time.Now().In(timezone).Format("2006-01-02")
	filename := strings.ReplaceAll(template, "{{.Date}}", dateStr)
	filename = strings.ReplaceAll(filename, "{{ .Date }}", dateStr)

	return filename
}
