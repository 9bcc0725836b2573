// Package html provides HTML report generation for the inventory tool.
// It implements the report.Writer interface to generate .html files with
// an inventory snapshot: summary, health, per-host data, and environment
// breakdown.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.Writer for HTML format.
type Writer struct {
	timezone     *time.Location
	policy       *config.Policy
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title          string
	GeneratedAt    string
	Source         string
	TotalHosts     int
	ActiveHosts    int
	Decommissioned int
	Health         *HealthData
	Environments   []*EnvironmentData
	Hosts          []*HostData
	Version        string
}

// HostData represents host data formatted for template rendering.
type HostData struct {
	Hostname         string
	CNAME            string
	Environment      string
	Status           string
	StatusClass      string
	Service          string
	Products         string
	Site             string
	PatchWindow      string
	DecommissionDate string
}

// EnvironmentData represents one environment row for template rendering.
type EnvironmentData struct {
	Name           string
	Code           string
	GraceDays      int
	TotalHosts     int
	ActiveHosts    int
	Decommissioned int
}

// HealthData represents the health report formatted for template rendering.
type HealthData struct {
	Score           string
	Status          string
	StatusClass     string
	Coverage        string
	OrphanedFiles   int
	MissingFiles    int
	SyntaxErrors    int
	Recommendations []string
}

// NewWriter creates a new HTML report writer. A nil timezone defaults to
// UTC; a nil policy defaults to the built-in operational policy. If
// templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, policy *config.Policy, templatePath string) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Writer{
		timezone:     timezone,
		policy:       policy,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write generates an HTML report from the inventory summary.
func (w *Writer) Write(summary *model.InventorySummary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("inventory summary is nil")
	}

	// Ensure output path has .html extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(summary)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate loads the HTML template: a user-defined template when
// configured and present, otherwise the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"statusClass": statusClass,
		"healthClass": healthClass,
	}

	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
		// User template not found, fall through to default
	}

	tmpl, err := template.New("default.html").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/default.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts an InventorySummary to TemplateData.
func (w *Writer) prepareTemplateData(summary *model.InventorySummary) *TemplateData {
	hosts := make([]*HostData, 0, len(summary.Hosts))
	for _, h := range sortedHosts(summary.Hosts) {
		hosts = append(hosts, w.convertHostData(h))
	}

	return &TemplateData{
		Title:          "Host Inventory Report",
		GeneratedAt:    summary.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05"),
		Source:         summary.Source,
		TotalHosts:     summary.TotalHosts,
		ActiveHosts:    summary.ActiveHosts,
		Decommissioned: summary.DecommissionedHosts,
		Health:         w.convertHealthData(summary.Health),
		Environments:   w.convertEnvironments(summary),
		Hosts:          hosts,
		Version:        summary.Version,
	}
}

// convertHostData converts a Host to HostData for template rendering.
func (w *Writer) convertHostData(h *model.Host) *HostData {
	return &HostData{
		Hostname:         h.Hostname,
		CNAME:            h.CNAME,
		Environment:      string(h.Environment),
		Status:           string(h.Status),
		StatusClass:      statusClass(h.Status),
		Service:          h.ApplicationService,
		Products:         strings.Join(h.ProductValues(), ", "),
		Site:             h.SiteCode,
		PatchWindow:      w.policy.PatchWindow(h.BatchNumber),
		DecommissionDate: h.DecommissionDate,
	}
}

// convertHealthData converts a HealthReport to HealthData. A nil report
// yields nil so the template can omit the health section.
func (w *Writer) convertHealthData(health *model.HealthReport) *HealthData {
	if health == nil {
		return nil
	}
	return &HealthData{
		Score:           fmt.Sprintf("%.1f", health.Score),
		Status:          string(health.Status),
		StatusClass:     healthClass(health.Status),
		Coverage:        fmt.Sprintf("%.1f%%", health.Coverage),
		OrphanedFiles:   len(health.OrphanedFiles),
		MissingFiles:    len(health.MissingFiles),
		SyntaxErrors:    len(health.SyntaxErrors),
		Recommendations: health.Recommendations,
	}
}

// convertEnvironments builds the sorted per-environment breakdown.
func (w *Writer) convertEnvironments(summary *model.InventorySummary) []*EnvironmentData {
	byEnv := summary.HostsByEnvironment()
	envs := make([]string, 0, len(byEnv))
	for env := range byEnv {
		envs = append(envs, env)
	}
	sort.Strings(envs)

	out := make([]*EnvironmentData, 0, len(envs))
	for _, env := range envs {
		var active, retired int
		for _, h := range byEnv[env] {
			if h.IsDecommissioned() {
				retired++
			} else {
				active++
			}
		}
		out = append(out, &EnvironmentData{
			Name:           env,
			Code:           w.policy.EnvironmentCode(model.Environment(env)),
			GraceDays:      w.policy.GraceDays(model.Environment(env)),
			TotalHosts:     len(byEnv[env]),
			ActiveHosts:    active,
			Decommissioned: retired,
		})
	}
	return out
}

// sortedHosts returns the hosts ordered by environment, then hostname, then
// cname, without mutating the input.
func sortedHosts(hosts []*model.Host) []*model.Host {
	sorted := make([]*model.Host, 0, len(hosts))
	for _, h := range hosts {
		if h != nil {
			sorted = append(sorted, h)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Environment != sorted[j].Environment {
			return sorted[i].Environment < sorted[j].Environment
		}
		if sorted[i].Hostname != sorted[j].Hostname {
			return sorted[i].Hostname < sorted[j].Hostname
		}
		return sorted[i].CNAME < sorted[j].CNAME
	})
	return sorted
}

// Helper functions

// statusClass returns the CSS class for a host status.
func statusClass(status model.Status) string {
	switch status {
	case model.StatusActive:
		return "status-active"
	case model.StatusDecommissioned:
		return "status-decommissioned"
	default:
		return ""
	}
}

// healthClass returns the CSS class for a health tier.
func healthClass(status model.HealthStatus) string {
	switch status {
	case model.HealthExcellent:
		return "health-excellent"
	case model.HealthGood:
		return "health-good"
	case model.HealthFair:
		return "health-fair"
	case model.HealthPoor:
		return "health-poor"
	case model.HealthCritical:
		return "health-critical"
	default:
		return ""
	}
}
