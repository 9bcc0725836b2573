// Package service provides business logic services for the inventory tool.
package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
	"inventory-tool/internal/source"
)

// Auditor runs the read-only checks: source validation, structure validation,
// host_vars validation, and the aggregate health score. Nothing it does
// mutates the inventory.
type Auditor struct {
	repo         *source.Repository
	key          model.InventoryKey
	outputDir    string
	hostVarsDir  string
	groupVarsDir string
	environments []string
	concurrency  int
	probeTimeout time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuditor creates an auditor over the configured directories.
func NewAuditor(cfg *config.Config, repo *source.Repository, logger zerolog.Logger) *Auditor {
	concurrency := cfg.Health.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	probeTimeout := cfg.Health.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}

	return &Auditor{
		repo:         repo,
		key:          repo.Key(),
		outputDir:    cfg.Inventory.OutputDir,
		hostVarsDir:  cfg.Inventory.HostVarsDir,
		groupVarsDir: cfg.Inventory.GroupVarsDir,
		environments: cfg.Inventory.Environments,
		concurrency:  concurrency,
		probeTimeout: probeTimeout,
		logger:       logger.With().Str("component", "auditor").Logger(),
		now:          time.Now,
	}
}

// ValidateCSV checks the source file row by row: model validation failures
// and duplicate identities are errors, lint findings are warnings.
func (a *Auditor) ValidateCSV(ctx context.Context) (*model.CheckResult, error) {
	table, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := model.NewCheckResult()
	now := a.now()
	seen := make(map[string]int, len(table.Rows))

	for _, row := range table.Rows {
		h, err := model.ParseHost(row.Fields, a.key)
		if err != nil {
			result.AddError("line %d: %v", row.Line, err)
			continue
		}

		identity := h.Identity(a.key)
		if first, ok := seen[identity]; ok {
			result.AddError("duplicate identity %q (lines %d and %d)", identity, first, row.Line)
		} else {
			seen[identity] = row.Line
		}

		for _, w := range h.Lint(now) {
			result.AddWarning("%s", w)
		}
	}

	return result, nil
}

// ValidateStructure checks that the expected directories and inventory files
// exist, that generated files carry the auto-generated header, that group_vars
// files reference known environments, and that the companion tool responds.
func (a *Auditor) ValidateStructure(ctx context.Context) (*model.CheckResult, error) {
	result := model.NewCheckResult()

	if _, err := os.Stat(a.repo.Path()); err != nil {
		result.AddError("source file missing: %s", a.repo.Path())
	}
	for _, dir := range []string{a.outputDir, a.hostVarsDir, a.groupVarsDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			result.AddError("required directory missing: %s", dir)
		}
	}

	for _, name := range a.environments {
		path := filepath.Join(a.outputDir, name+".yml")
		data, err := os.ReadFile(path)
		if err != nil {
			result.AddWarning("inventory file missing: %s", path)
			continue
		}
		if !strings.Contains(string(data), autoGeneratedBanner) {
			result.AddWarning("inventory file lacks the auto-generated header: %s", path)
		}
	}

	a.auditGroupVars(result)
	a.probeCompanionTool(ctx, result)

	return result, nil
}

// ValidateHostVars cross-checks host_vars files against the source: missing
// files for active hosts are errors, orphaned files are warnings, and every
// existing file gets a YAML syntax check.
func (a *Auditor) ValidateHostVars(ctx context.Context) (*model.CheckResult, error) {
	table, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	hosts := a.parseAll(table)

	stems, err := a.varsFileStems()
	if err != nil {
		return nil, err
	}

	result := model.NewCheckResult()

	valid := identitySet(hosts)
	var names, orphans []string
	for stem, name := range stems {
		names = append(names, name)
		if !valid[stem] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		result.AddWarning("orphaned host_vars file: %s", name)
	}

	for _, h := range hosts {
		if !h.IsActive() {
			continue
		}
		if _, ok := stems[h.Identity(a.key)]; !ok {
			result.AddError("missing host_vars file for active host: %s", h.Identity(a.key))
		}
	}

	for _, finding := range a.scanVarsSyntax(ctx, names) {
		result.AddError("invalid host_vars file %s", finding)
	}

	return result, nil
}

// ValidateAll runs every validation and merges the findings.
func (a *Auditor) ValidateAll(ctx context.Context) (*model.CheckResult, error) {
	result, err := a.ValidateCSV(ctx)
	if err != nil {
		return nil, err
	}

	structure, err := a.ValidateStructure(ctx)
	if err != nil {
		return nil, err
	}
	result.Merge(structure)

	vars, err := a.ValidateHostVars(ctx)
	if err != nil {
		return nil, err
	}
	result.Merge(vars)

	return result, nil
}

// CheckHealth computes the inventory health report. Coverage is the share of
// active hosts with a vars file; each orphaned file costs two points, capped
// at twenty; the score is clamped to [0,100].
func (a *Auditor) CheckHealth(ctx context.Context) (*model.HealthReport, error) {
	table, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	hosts := a.parseAll(table)

	stems, err := a.varsFileStems()
	if err != nil {
		return nil, err
	}

	valid := identitySet(hosts)
	var names, orphans []string
	for stem, name := range stems {
		names = append(names, name)
		if !valid[stem] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)

	var active, covered int
	var missing []string
	for _, h := range hosts {
		if !h.IsActive() {
			continue
		}
		active++
		if _, ok := stems[h.Identity(a.key)]; ok {
			covered++
		} else {
			missing = append(missing, h.VarsFileName(a.key))
		}
	}
	sort.Strings(missing)

	coverage := 100.0
	if active > 0 {
		coverage = float64(covered) / float64(active) * 100
	}
	score := coverage - min(float64(len(orphans))*2, 20)
	score = max(0, min(100, score))

	report := &model.HealthReport{
		Score:               score,
		Status:              model.HealthStatusFor(score),
		TotalHosts:          len(hosts),
		ActiveHosts:         active,
		DecommissionedHosts: len(hosts) - active,
		Coverage:            coverage,
		OrphanedFiles:       orphans,
		MissingFiles:        missing,
		SyntaxErrors:        a.scanVarsSyntax(ctx, names),
		CheckedAt:           a.now(),
	}
	report.Recommendations = a.recommendations(report)

	a.logger.Info().
		Float64("score", report.Score).
		Str("status", string(report.Status)).
		Float64("coverage", report.Coverage).
		Int("orphans", len(report.OrphanedFiles)).
		Msg("health check completed")

	return report, nil
}

func (a *Auditor) recommendations(report *model.HealthReport) []string {
	var recs []string
	if len(report.MissingFiles) > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d active host(s) lack a host_vars file, run 'inventory-tool generate'", len(report.MissingFiles)))
	}
	if len(report.OrphanedFiles) > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d orphaned host_vars file(s) found, 'inventory-tool generate' removes them", len(report.OrphanedFiles)))
	}
	if len(report.SyntaxErrors) > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d host_vars file(s) contain invalid YAML, regenerate them", len(report.SyntaxErrors)))
	}
	if len(recs) == 0 {
		recs = append(recs, "✅ Inventory is healthy")
	}
	return recs
}

// parseAll converts rows into hosts, dropping invalid rows. ValidateCSV is
// the place that reports them; the other checks just work on what parses.
func (a *Auditor) parseAll(table *source.Table) []*model.Host {
	hosts := make([]*model.Host, 0, len(table.Rows))
	for _, row := range table.Rows {
		h, err := model.ParseHost(row.Fields, a.key)
		if err != nil {
			a.logger.Debug().Int("line", row.Line).Err(err).Msg("skipping unparsable row")
			continue
		}
		hosts = append(hosts, h)
	}
	return hosts
}

// varsFileStems maps file stem to file name for every YAML file in the
// host_vars directory. A missing directory yields an empty map.
func (a *Auditor) varsFileStems() (map[string]string, error) {
	entries, err := os.ReadDir(a.hostVarsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read host_vars directory: %w", err)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		out[strings.TrimSuffix(entry.Name(), ext)] = entry.Name()
	}
	return out, nil
}

// scanVarsSyntax parses every named vars file concurrently, bounded by the
// configured concurrency, and returns "name: error" findings sorted.
func (a *Auditor) scanVarsSyntax(ctx context.Context, names []string) []string {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	var mu sync.Mutex
	var findings []string
	for _, name := range names {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(a.hostVarsDir, name))
			if err != nil {
				mu.Lock()
				findings = append(findings, fmt.Sprintf("%s: %v", name, err))
				mu.Unlock()
				return nil
			}
			var doc map[string]any
			if err := yaml.Unmarshal(data, &doc); err != nil {
				mu.Lock()
				findings = append(findings, fmt.Sprintf("%s: %v", name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		findings = append(findings, err.Error())
	}

	sort.Strings(findings)
	return findings
}

// auditGroupVars flags group_vars files that reference unknown environments.
// all.yml is shared Ansible configuration and is never flagged.
func (a *Auditor) auditGroupVars(result *model.CheckResult) {
	entries, err := os.ReadDir(a.groupVarsDir)
	if err != nil {
		return // the missing directory is already an error finding
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ext)
		if stem == "all" {
			continue
		}
		if !strings.HasPrefix(stem, model.EnvGroupPrefix) {
			continue
		}
		if env := strings.TrimPrefix(stem, model.EnvGroupPrefix); !model.ValidEnvironment(env) {
			result.AddWarning("group_vars file references unknown environment: %s", entry.Name())
		}
	}
}

// probeCompanionTool checks that ansible-inventory is on PATH and responds
// within the probe timeout. Failure is a warning, never an error.
func (a *Auditor) probeCompanionTool(ctx context.Context, result *model.CheckResult) {
	probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, "ansible-inventory", "--version").Output()
	if err != nil {
		result.AddWarning("ansible-inventory not available: %v", err)
		return
	}

	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	a.logger.Debug().Str("version", version).Msg("ansible-inventory probe succeeded")
}

// identitySet collects every hostname and cname in use, the set of valid
// host_vars file stems.
func identitySet(hosts []*model.Host) map[string]bool {
	set := make(map[string]bool, len(hosts)*2)
	for _, h := range hosts {
		if h.Hostname != "" {
			set[h.Hostname] = true
		}
		if h.CNAME != "" {
			set[h.CNAME] = true
		}
	}
	return set
}
