// Package service provides business logic services for the inventory tool.
package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"inventory-tool/internal/model"
	"inventory-tool/internal/source"
)

// ExportClient is the slice of the CMDB client the fetcher needs.
type ExportClient interface {
	FetchHostsCSV(ctx context.Context) ([]byte, error)
}

// Fetcher refreshes the local CSV source of truth from the remote export.
type Fetcher struct {
	client  ExportClient
	repo    *source.Repository
	logger  zerolog.Logger
	confirm func(prompt string) bool
}

// NewFetcher creates a fetcher over the given export client and repository.
func NewFetcher(client ExportClient, repo *source.Repository, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		repo:    repo,
		logger:  logger.With().Str("component", "fetcher").Logger(),
		confirm: defaultConfirm,
	}
}

// Refresh downloads the hosts export and replaces the source file with it.
// The payload must parse as a source CSV with at least one row and carry the
// identity and environment columns; the previous file is backed up before the
// atomic swap. Unless force is set the overwrite asks for confirmation; a
// declined prompt returns an empty result and no error.
func (f *Fetcher) Refresh(ctx context.Context, force bool) (*model.RefreshResult, error) {
	payload, err := f.client.FetchHostsCSV(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := f.inspect(payload)
	if err != nil {
		return nil, err
	}

	if !force {
		prompt := fmt.Sprintf("⚠️  Replace %s with the fetched export (%d hosts)? (y/yes): ",
			f.repo.Path(), rows)
		if !f.confirm(prompt) {
			f.logger.Info().Msg("fetch cancelled, source file left untouched")
			return &model.RefreshResult{}, nil
		}
	}

	backup, err := f.repo.ReplaceWith(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to replace source file: %w", err)
	}

	result := &model.RefreshResult{
		Rows:   rows,
		Bytes:  len(payload),
		Backup: backup,
	}

	f.logger.Info().
		Int("rows", result.Rows).
		Int("bytes", result.Bytes).
		Str("backup", result.Backup).
		Msg("✅ source file refreshed from remote export")

	return result, nil
}

// inspect sanity-parses the fetched payload and returns its row count. The
// repository re-parses before writing; this pass exists to reject payloads
// that parse but lack the columns the rest of the tool depends on.
func (f *Fetcher) inspect(payload []byte) (int, error) {
	table, err := source.Parse(bytes.NewReader(payload), f.repo.Key())
	if err != nil {
		return 0, fmt.Errorf("fetched payload is not a valid source file: %w", err)
	}
	if len(table.Rows) == 0 {
		return 0, fmt.Errorf("fetched payload contains no host rows")
	}
	for _, col := range []string{string(f.repo.Key()), "environment"} {
		if !table.HasHeader(col) {
			return 0, fmt.Errorf("fetched payload is missing required column %q", col)
		}
	}
	return len(table.Rows), nil
}
