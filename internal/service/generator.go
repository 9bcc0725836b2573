// Package service provides business logic services for the inventory tool.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
	"inventory-tool/internal/source"
)

// Generator orchestrates one full generation run: load and parse the source
// file, derive the group hierarchy, write inventory and host_vars files, and
// clean up orphans.
type Generator struct {
	cfg     *config.Config
	repo    *source.Repository
	writer  *ArtifactWriter
	logger  zerolog.Logger
	dryRun  bool
	cleanup bool
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithDryRun makes the run report what it would write without touching disk.
func WithDryRun(enabled bool) GeneratorOption {
	return func(g *Generator) {
		g.dryRun = enabled
	}
}

// WithOrphanCleanup toggles removal of orphaned host_vars files (on by
// default).
func WithOrphanCleanup(enabled bool) GeneratorOption {
	return func(g *Generator) {
		g.cleanup = enabled
	}
}

// NewGenerator creates a generator wired to the given source repository and
// artifact writer.
func NewGenerator(cfg *config.Config, repo *source.Repository, writer *ArtifactWriter, logger zerolog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		cfg:     cfg,
		repo:    repo,
		writer:  writer,
		logger:  logger.With().Str("component", "generator").Logger(),
		cleanup: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes the generation pipeline and returns its statistics. Invalid
// rows are skipped with a warning; an environment with no active hosts gets
// no inventory file; the decommissioned inventory is written only when
// decommissioned hosts exist.
func (g *Generator) Run(ctx context.Context) (*model.GenerationStats, error) {
	start := time.Now()
	stats := model.NewGenerationStats()
	stats.DryRun = g.dryRun

	g.logger.Info().
		Str("source", g.repo.Path()).
		Bool("dry_run", g.dryRun).
		Msg("starting inventory generation")

	g.logger.Debug().Msg("step 1: loading source file")
	table, err := g.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	g.logger.Debug().Int("rows", len(table.Rows)).Msg("step 2: parsing host records")
	hosts := g.parseRows(table, stats)
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no valid host records in %s", g.repo.Path())
	}

	if g.dryRun {
		g.planOnly(hosts, stats)
		stats.Duration = time.Since(start)
		return stats, nil
	}

	if g.cleanup {
		g.logger.Debug().Msg("step 3: cleaning up orphaned host_vars files")
		removed, err := g.writer.CleanupOrphans(hosts)
		if err != nil {
			return nil, err
		}
		stats.OrphansRemoved = len(removed)
	}

	g.logger.Debug().Msg("step 4: writing host_vars files")
	for _, h := range hosts {
		if !h.IsActive() {
			continue
		}
		if _, err := g.writer.WriteHostVars(h); err != nil {
			return nil, err
		}
		stats.HostVarsFiles++
	}

	g.logger.Debug().Msg("step 5: writing inventory files")
	if err := g.writeInventories(hosts, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	g.logger.Info().
		Int("hosts", stats.TotalHosts).
		Int("skipped_rows", stats.SkippedRows).
		Int("inventory_files", stats.InventoryFiles).
		Int("host_vars_files", stats.HostVarsFiles).
		Int("orphans_removed", stats.OrphansRemoved).
		Dur("duration", stats.Duration).
		Msg("✅ inventory generation completed")

	return stats, nil
}

// parseRows converts table rows into hosts, counting each and skipping rows
// that fail validation.
func (g *Generator) parseRows(table *source.Table, stats *model.GenerationStats) []*model.Host {
	now := time.Now()

	var hosts []*model.Host
	for _, row := range table.Rows {
		h, err := model.ParseHost(row.Fields, g.repo.Key())
		if err != nil {
			g.logger.Warn().
				Int("line", row.Line).
				Err(err).
				Msg("⚠️ skipping invalid row")
			stats.SkippedRows++
			continue
		}
		for _, warning := range h.Lint(now) {
			g.logger.Warn().Msg(warning)
		}
		stats.AddHost(h)
		hosts = append(hosts, h)
	}
	return hosts
}

// writeInventories emits one file per environment that has active hosts,
// plus the decommissioned inventory. Each environment file is built from
// that environment's active hosts only, so shared application or product
// group names never pull in hosts from another environment.
func (g *Generator) writeInventories(hosts []*model.Host, stats *model.GenerationStats) error {
	for _, name := range g.cfg.Inventory.Environments {
		env := model.Environment(name)
		envHosts := activeHostsIn(hosts, env)
		if len(envHosts) == 0 {
			g.logger.Warn().
				Str("environment", name).
				Msg("no active hosts found for environment, skipping inventory file")
			continue
		}

		hierarchy := BuildHierarchy(envHosts, g.repo.Key())
		if _, err := g.writer.WriteEnvironmentInventory(env, hierarchy); err != nil {
			return err
		}
		stats.InventoryFiles++

		g.logger.Info().
			Str("environment", name).
			Int("hosts", len(envHosts)).
			Int("groups", hierarchy.Len()).
			Msg("✅ environment inventory generated")
	}

	if stats.DecommissionedHosts > 0 {
		if _, err := g.writer.WriteDecommissionedInventory(BuildHierarchy(hosts, g.repo.Key())); err != nil {
			return err
		}
		stats.InventoryFiles++
	}
	return nil
}

// planOnly fills the statistics with what a real run would produce.
func (g *Generator) planOnly(hosts []*model.Host, stats *model.GenerationStats) {
	for _, name := range g.cfg.Inventory.Environments {
		if len(activeHostsIn(hosts, model.Environment(name))) > 0 {
			stats.InventoryFiles++
		}
	}
	if stats.DecommissionedHosts > 0 {
		stats.InventoryFiles++ // decommissioned.yml
	}
	stats.HostVarsFiles = stats.ActiveHosts

	g.logger.Info().
		Int("inventory_files", stats.InventoryFiles).
		Int("host_vars_files", stats.HostVarsFiles).
		Msg("🔍 dry run, no files written")
}

// activeHostsIn filters the hosts down to the active members of one
// environment.
func activeHostsIn(hosts []*model.Host, env model.Environment) []*model.Host {
	var out []*model.Host
	for _, h := range hosts {
		if h.IsActive() && h.Environment == env {
			out = append(out, h)
		}
	}
	return out
}
