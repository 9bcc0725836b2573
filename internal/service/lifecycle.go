// Package service provides business logic services for the inventory tool.
package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
	"inventory-tool/internal/source"
)

// HostNotFoundError indicates the requested identity matches no hostname or
// cname in the source file.
type HostNotFoundError struct {
	Identity string
}

// Error implements the error interface.
func (e *HostNotFoundError) Error() string {
	return fmt.Sprintf("host not found in source file: %s", e.Identity)
}

var reasonCleaner = regexp.MustCompile(`[^a-zA-Z0-9 _-]`)

// sanitizeReason strips characters outside [a-zA-Z0-9 _-] from a free-text
// decommission reason before it reaches logs and results.
func sanitizeReason(reason string) string {
	return strings.TrimSpace(reasonCleaner.ReplaceAllString(reason, ""))
}

// CleanupOptions controls a cleanup run.
type CleanupOptions struct {
	GraceOverride int // grace days for every environment; negative uses the policy
	DryRun        bool
	AutoConfirm   bool
	MaxHosts      int // cap on hosts removed per run; 0 is unlimited
}

// Lifecycle implements host state transitions over the CSV source: marking
// hosts decommissioned, listing hosts whose grace period has elapsed, and
// removing them for good.
type Lifecycle struct {
	repo        *source.Repository
	policy      *config.Policy
	key         model.InventoryKey
	hostVarsDir string
	logger      zerolog.Logger
	now         func() time.Time
	confirm     func(prompt string) bool
}

// NewLifecycle creates a lifecycle service bound to the given source
// repository.
func NewLifecycle(cfg *config.Config, repo *source.Repository, policy *config.Policy, logger zerolog.Logger) *Lifecycle {
	if policy == nil {
		policy = config.DefaultPolicy()
	}

	return &Lifecycle{
		repo:        repo,
		policy:      policy,
		key:         repo.Key(),
		hostVarsDir: cfg.Inventory.HostVarsDir,
		logger:      logger.With().Str("component", "lifecycle").Logger(),
		now:         time.Now,
		confirm:     defaultConfirm,
	}
}

// defaultConfirm prompts on stderr and accepts y/yes from stdin.
func defaultConfirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// Decommission marks one host as decommissioned in the source file. The host
// may be addressed by hostname or cname. An empty date defaults to today.
// Only the status and decommission_date cells of the matched row change; a
// timestamped backup is written before the save.
func (l *Lifecycle) Decommission(ctx context.Context, identity, date, reason string, dryRun bool) (*model.DecommissionResult, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, fmt.Errorf("host identity is required")
	}

	table, err := l.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, row := range table.Rows {
		if row.Fields["hostname"] == identity || row.Fields["cname"] == identity {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &HostNotFoundError{Identity: identity}
	}

	h, err := model.ParseHost(table.Rows[idx].Fields, l.key)
	if err != nil {
		return nil, fmt.Errorf("cannot decommission %s: %w", identity, err)
	}

	if date == "" {
		date = l.now().Format(model.DateFormat)
	}
	updated, err := h.Decommission(date)
	if err != nil {
		return nil, fmt.Errorf("cannot decommission %s: %w", identity, err)
	}

	result := &model.DecommissionResult{
		Identity: identity,
		Date:     date,
		Reason:   sanitizeReason(reason),
		DryRun:   dryRun,
	}

	if dryRun {
		l.logger.Info().
			Str("host", identity).
			Str("date", date).
			Msg("dry run: host would be decommissioned")
		return result, nil
	}

	table.Rows[idx].Fields = updated.Row()
	table.EnsureHeaders("status", "decommission_date")

	backup, err := l.repo.Save(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to save source file: %w", err)
	}
	result.Backup = backup

	l.logger.Info().
		Str("host", identity).
		Str("date", date).
		Str("reason", result.Reason).
		Str("backup", backup).
		Msg("host decommissioned")

	return result, nil
}

// ListExpired returns the decommissioned hosts whose grace period has fully
// elapsed, ordered by expiry date (longest expired first). A non-negative
// graceOverride replaces the per-environment policy value.
func (l *Lifecycle) ListExpired(ctx context.Context, graceOverride int) ([]*model.ExpiredHost, error) {
	table, err := l.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return l.expired(table, graceOverride), nil
}

// Cleanup permanently removes expired hosts: their rows leave the source file
// (after a backup) and their host_vars files are deleted. Unless AutoConfirm
// is set, the user is prompted before anything is touched. A dry run reports
// what would happen without touching anything.
func (l *Lifecycle) Cleanup(ctx context.Context, opts CleanupOptions) (*model.CleanupResult, error) {
	table, err := l.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	expired := l.expired(table, opts.GraceOverride)
	result := &model.CleanupResult{DryRun: opts.DryRun}
	if len(expired) == 0 {
		l.logger.Info().Msg("no expired hosts to clean up")
		return result, nil
	}

	if opts.MaxHosts > 0 && len(expired) > opts.MaxHosts {
		l.logger.Info().
			Int("expired", len(expired)).
			Int("max_hosts", opts.MaxHosts).
			Msg("limiting cleanup batch")
		expired = expired[:opts.MaxHosts]
	}

	if opts.DryRun {
		for _, e := range expired {
			result.Identities = append(result.Identities, e.Host.Identity(l.key))
		}
		sort.Strings(result.Identities)
		result.Cleaned = len(result.Identities)
		result.RemovedFiles = l.existingVarsFiles(expired)
		l.logger.Info().
			Int("hosts", result.Cleaned).
			Msg("dry run: expired hosts would be removed")
		return result, nil
	}

	if !opts.AutoConfirm {
		prompt := fmt.Sprintf("⚠️  Permanently remove %d expired host(s) from %s? (y/yes): ",
			len(expired), l.repo.Path())
		if !l.confirm(prompt) {
			l.logger.Info().Msg("cleanup cancelled")
			return result, nil
		}
	}

	hostnames := make(map[string]bool, len(expired))
	cnames := make(map[string]bool, len(expired))
	for _, e := range expired {
		result.Identities = append(result.Identities, e.Host.Identity(l.key))
		if e.Host.Hostname != "" {
			hostnames[e.Host.Hostname] = true
		}
		if e.Host.CNAME != "" {
			cnames[e.Host.CNAME] = true
		}
	}
	sort.Strings(result.Identities)
	result.Cleaned = len(result.Identities)

	kept := make([]source.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if hostnames[row.Fields["hostname"]] || cnames[row.Fields["cname"]] {
			continue
		}
		kept = append(kept, row)
	}
	table.Rows = kept

	backup, err := l.repo.Save(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to save cleaned source file: %w", err)
	}
	result.Backup = backup

	for _, name := range l.existingVarsFiles(expired) {
		if err := os.Remove(filepath.Join(l.hostVarsDir, name)); err != nil {
			l.logger.Warn().Str("file", name).Err(err).Msg("could not remove host_vars file")
			continue
		}
		result.RemovedFiles = append(result.RemovedFiles, name)
	}
	sort.Strings(result.RemovedFiles)

	l.logger.Info().
		Int("hosts", result.Cleaned).
		Int("files", len(result.RemovedFiles)).
		Str("backup", backup).
		Msg("expired hosts cleaned up")

	return result, nil
}

// expired filters the table down to decommissioned hosts past their grace
// period. Unparsable rows and decommissioned hosts without a valid date are
// skipped with a warning.
func (l *Lifecycle) expired(table *source.Table, graceOverride int) []*model.ExpiredHost {
	now := l.now()

	var out []*model.ExpiredHost
	for _, row := range table.Rows {
		h, err := model.ParseHost(row.Fields, l.key)
		if err != nil {
			l.logger.Warn().Int("line", row.Line).Err(err).Msg("skipping unparsable row")
			continue
		}
		if !h.IsDecommissioned() {
			continue
		}

		decommissioned := h.ParsedDecommissionDate()
		if decommissioned.IsZero() {
			l.logger.Warn().
				Str("host", h.Identity(l.key)).
				Msg("decommissioned host has no valid decommission_date and will never expire")
			continue
		}

		grace := l.policy.GraceDays(h.Environment)
		if graceOverride >= 0 {
			grace = graceOverride
		}
		expiry := decommissioned.AddDate(0, 0, grace)
		if !now.After(expiry) {
			continue
		}

		out = append(out, &model.ExpiredHost{
			Host:        h,
			GraceDays:   grace,
			ExpiryDate:  expiry,
			DaysExpired: int(now.Sub(expiry).Hours() / 24),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].Host.Identity(l.key) < out[j].Host.Identity(l.key)
	})
	return out
}

// existingVarsFiles returns the host_vars file names present on disk for the
// given hosts, checking both the hostname and cname spellings.
func (l *Lifecycle) existingVarsFiles(expired []*model.ExpiredHost) []string {
	seen := make(map[string]bool)
	var files []string
	for _, e := range expired {
		for _, stem := range []string{e.Host.Hostname, e.Host.CNAME} {
			if stem == "" {
				continue
			}
			name := stem + ".yml"
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, err := os.Stat(filepath.Join(l.hostVarsDir, name)); err == nil {
				files = append(files, name)
			}
		}
	}
	sort.Strings(files)
	return files
}
