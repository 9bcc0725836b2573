// Package model provides data models for the inventory tool.
package model

import (
	"fmt"
	"sort"
	"time"
)

// HealthStatus is the five-tier classification of an inventory health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "EXCELLENT"
	HealthGood      HealthStatus = "GOOD"
	HealthFair      HealthStatus = "FAIR"
	HealthPoor      HealthStatus = "POOR"
	HealthCritical  HealthStatus = "CRITICAL"
)

// HealthStatusFor maps a health score to its tier.
func HealthStatusFor(score float64) HealthStatus {
	switch {
	case score >= 95:
		return HealthExcellent
	case score >= 85:
		return HealthGood
	case score >= 70:
		return HealthFair
	case score >= 50:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// GenerationStats aggregates the outcome of one generation run.
type GenerationStats struct {
	TotalHosts          int            `json:"total_hosts"`
	ActiveHosts         int            `json:"active_hosts"`
	DecommissionedHosts int            `json:"decommissioned_hosts"`
	EnvironmentCounts   map[string]int `json:"environment_counts"`
	InventoryFiles      int            `json:"inventory_files"`
	HostVarsFiles       int            `json:"host_vars_files"`
	OrphansRemoved      int            `json:"orphans_removed"`
	SkippedRows         int            `json:"skipped_rows"`
	DryRun              bool           `json:"dry_run,omitempty"`
	Duration            time.Duration  `json:"duration"`
}

// NewGenerationStats returns empty stats with an initialized environment map.
func NewGenerationStats() *GenerationStats {
	return &GenerationStats{EnvironmentCounts: make(map[string]int)}
}

// AddHost counts one parsed host into the statistics.
func (s *GenerationStats) AddHost(h *Host) {
	if h == nil {
		return
	}
	s.TotalHosts++
	if h.IsDecommissioned() {
		s.DecommissionedHosts++
	} else {
		s.ActiveHosts++
	}
	if s.EnvironmentCounts == nil {
		s.EnvironmentCounts = make(map[string]int)
	}
	s.EnvironmentCounts[string(h.Environment)]++
}

// Summary renders the statistics as console lines.
func (s *GenerationStats) Summary() string {
	lines := []string{
		"📊 Inventory statistics:",
		fmt.Sprintf("   Total hosts: %d", s.TotalHosts),
		fmt.Sprintf("   Active: %d", s.ActiveHosts),
		fmt.Sprintf("   Decommissioned: %d", s.DecommissionedHosts),
		fmt.Sprintf("   Inventory files: %d", s.InventoryFiles),
		fmt.Sprintf("   Host vars files: %d", s.HostVarsFiles),
		fmt.Sprintf("   Generation time: %.2fs", s.Duration.Seconds()),
	}
	if s.SkippedRows > 0 {
		lines = append(lines, fmt.Sprintf("   Skipped rows: %d", s.SkippedRows))
	}
	if s.OrphansRemoved > 0 {
		lines = append(lines, fmt.Sprintf("   Orphans removed: %d", s.OrphansRemoved))
	}
	if len(s.EnvironmentCounts) > 0 {
		lines = append(lines, "   Environment breakdown:")
		envs := make([]string, 0, len(s.EnvironmentCounts))
		for env := range s.EnvironmentCounts {
			envs = append(envs, env)
		}
		sort.Strings(envs)
		for _, env := range envs {
			lines = append(lines, fmt.Sprintf("     %s: %d", env, s.EnvironmentCounts[env]))
		}
	}
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

// CheckResult is a standardized validation outcome: errors fail the check,
// warnings do not.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewCheckResult returns a passing result with no findings.
func NewCheckResult() *CheckResult {
	return &CheckResult{Valid: true}
}

// AddError records a finding that fails the check.
func (r *CheckResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

// AddWarning records an advisory finding.
func (r *CheckResult) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another result into this one.
func (r *CheckResult) Merge(other *CheckResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if !other.Valid {
		r.Valid = false
	}
}

// HasIssues reports whether any errors or warnings were recorded.
func (r *CheckResult) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// Summary renders a one-line digest of the result.
func (r *CheckResult) Summary() string {
	if !r.HasIssues() {
		return "✅ Validation passed - no issues found"
	}
	out := ""
	if len(r.Errors) > 0 {
		out = fmt.Sprintf("❌ %d error(s)", len(r.Errors))
	}
	if len(r.Warnings) > 0 {
		if out != "" {
			out += " | "
		}
		out += fmt.Sprintf("⚠️ %d warning(s)", len(r.Warnings))
	}
	return out
}

// HealthReport is the outcome of a health check over source data and emitted
// artifacts. It never mutates state; recommendations are advisory.
type HealthReport struct {
	Score               float64      `json:"health_score"`
	Status              HealthStatus `json:"health_status"`
	TotalHosts          int          `json:"total_hosts"`
	ActiveHosts         int          `json:"active_hosts"`
	DecommissionedHosts int          `json:"decommissioned_hosts"`
	Coverage            float64      `json:"coverage"`
	OrphanedFiles       []string     `json:"orphaned_files,omitempty"`
	MissingFiles        []string     `json:"missing_files,omitempty"`
	SyntaxErrors        []string     `json:"syntax_errors,omitempty"`
	Recommendations     []string     `json:"recommendations,omitempty"`
	CheckedAt           time.Time    `json:"checked_at"`
}

// Examples returns up to n entries from a finding list, for compact display.
func Examples(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

// ExpiredHost is a decommissioned host whose grace period has elapsed.
type ExpiredHost struct {
	Host        *Host     `json:"host"`
	GraceDays   int       `json:"grace_period"`
	ExpiryDate  time.Time `json:"expiry_date"`
	DaysExpired int       `json:"days_expired"`
}

// DecommissionResult reports a completed (or simulated) decommission.
type DecommissionResult struct {
	Identity string `json:"identity"`
	Date     string `json:"date"`
	Reason   string `json:"reason,omitempty"`
	DryRun   bool   `json:"dry_run,omitempty"`
	Backup   string `json:"backup,omitempty"`
}

// CleanupResult reports which expired hosts were removed and what was deleted.
type CleanupResult struct {
	DryRun       bool     `json:"dry_run,omitempty"`
	Cleaned      int      `json:"cleaned"`
	Identities   []string `json:"identities,omitempty"`
	RemovedFiles []string `json:"removed_files,omitempty"`
	Backup       string   `json:"backup,omitempty"`
}

// RefreshResult reports a source refresh from the remote export. A zero
// Rows value means the refresh was cancelled before anything was written.
type RefreshResult struct {
	Rows   int    `json:"rows"`
	Bytes  int    `json:"bytes"`
	Backup string `json:"backup,omitempty"`
}

// InventorySummary is the input to the report writers: a snapshot of the
// parsed source plus an optional health report.
type InventorySummary struct {
	GeneratedAt         time.Time      `json:"generated_at"`
	Source              string         `json:"source"`
	TotalHosts          int            `json:"total_hosts"`
	ActiveHosts         int            `json:"active_hosts"`
	DecommissionedHosts int            `json:"decommissioned_hosts"`
	EnvironmentCounts   map[string]int `json:"environment_counts"`
	Hosts               []*Host        `json:"hosts"`
	Health              *HealthReport  `json:"health,omitempty"`
	Version             string         `json:"version,omitempty"`
}

// NewInventorySummary builds a summary snapshot from parsed hosts.
func NewInventorySummary(hosts []*Host, source string, generatedAt time.Time) *InventorySummary {
	s := &InventorySummary{
		GeneratedAt:       generatedAt,
		Source:            source,
		EnvironmentCounts: make(map[string]int),
		Hosts:             hosts,
	}
	for _, h := range hosts {
		if h == nil {
			continue
		}
		s.TotalHosts++
		if h.IsDecommissioned() {
			s.DecommissionedHosts++
		} else {
			s.ActiveHosts++
		}
		s.EnvironmentCounts[string(h.Environment)]++
	}
	return s
}

// HostsByEnvironment groups the summary's hosts per environment, preserving
// input order within each environment.
func (s *InventorySummary) HostsByEnvironment() map[string][]*Host {
	byEnv := make(map[string][]*Host)
	for _, h := range s.Hosts {
		if h == nil {
			continue
		}
		env := string(h.Environment)
		byEnv[env] = append(byEnv[env], h)
	}
	return byEnv
}
