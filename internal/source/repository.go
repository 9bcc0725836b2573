// Package source manages the CSV source of truth for the inventory tool.
package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
)

// ErrEmptyWrite is returned when a save would persist a source file with zero
// hosts. The previous file is left untouched.
var ErrEmptyWrite = errors.New("refusing to write empty source file")

// requiredHeaders are the columns every source header row must declare. The
// cname column is optional at parse time; identity resolution falls back
// between the two name columns per row.
var requiredHeaders = []string{"hostname", "environment"}

// SourceNotFoundError indicates the CSV source file is missing or unreadable.
type SourceNotFoundError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// Unwrap returns the underlying error.
func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// LockTimeoutError indicates the advisory file lock could not be acquired
// within the configured timeout.
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not lock %s within %s", e.Path, e.Timeout)
}

// Row is one CSV data row addressed by header name.
type Row struct {
	Line   int // 1-based line number in the file; the header is line 1
	Fields map[string]string
}

// Table is the parsed CSV source: ordered headers plus data rows in file
// order. Comment rows and rows without an identity are already filtered out.
type Table struct {
	Headers []string
	Rows    []Row
}

// HasHeader reports whether the table declares the given column.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// EnsureHeaders appends any missing column names to the header row. Needed
// before saving rows that gained fields the original file did not carry
// (e.g., decommission_date).
func (t *Table) EnsureHeaders(names ...string) {
	for _, name := range names {
		if !t.HasHeader(name) {
			t.Headers = append(t.Headers, name)
		}
	}
}

// Repository provides locked, backed-up access to the CSV source file.
type Repository struct {
	path          string
	key           model.InventoryKey
	backupDir     string
	lockTimeout   time.Duration
	retryInterval time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewRepository creates a repository for the configured source file.
func NewRepository(cfg *config.SourceConfig, logger zerolog.Logger) *Repository {
	key := model.InventoryKey(cfg.InventoryKey)
	if !model.ValidInventoryKey(cfg.InventoryKey) {
		key = model.KeyHostname
	}

	lockTimeout := cfg.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	retryInterval := cfg.LockRetryInterval
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
	}
	backupDir := cfg.BackupDir
	if backupDir == "" {
		backupDir = "backups"
	}

	return &Repository{
		path:          cfg.CSVFile,
		key:           key,
		backupDir:     backupDir,
		lockTimeout:   lockTimeout,
		retryInterval: retryInterval,
		logger:        logger.With().Str("component", "source").Logger(),
		now:           time.Now,
	}
}

// Path returns the source file path.
func (r *Repository) Path() string {
	return r.path
}

// Key returns the configured primary identity column.
func (r *Repository) Key() model.InventoryKey {
	return r.key
}

// Load reads the source file under a shared lock and returns the parsed
// table. A missing file yields *SourceNotFoundError; failing to acquire the
// lock within the timeout yields *LockTimeoutError.
func (r *Repository) Load(ctx context.Context) (*Table, error) {
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceNotFoundError{Path: r.path, Err: err}
		}
		return nil, fmt.Errorf("failed to stat source file: %w", err)
	}

	lock := flock.New(r.lockPath())
	locked, err := r.acquire(ctx, lock.TryRLockContext)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, &LockTimeoutError{Path: r.path, Timeout: r.lockTimeout}
	}
	defer lock.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		return nil, &SourceNotFoundError{Path: r.path, Err: err}
	}
	defer f.Close()

	table, err := Parse(f, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.path, err)
	}

	r.logger.Debug().
		Str("file", r.path).
		Int("rows", len(table.Rows)).
		Msg("Source file loaded")

	return table, nil
}

// Save writes the table back to the source file: pre-write backup, exclusive
// lock, temp file + atomic rename. A table with zero rows is refused with
// ErrEmptyWrite and the existing file stays untouched. Returns the backup
// path ("" when no previous file existed).
func (r *Repository) Save(ctx context.Context, table *Table) (string, error) {
	if table == nil || len(table.Rows) == 0 {
		return "", ErrEmptyWrite
	}
	if len(table.Headers) == 0 {
		return "", fmt.Errorf("source table has no header row")
	}

	backupPath, err := r.backupIfExists()
	if err != nil {
		return "", fmt.Errorf("failed to back up source file: %w", err)
	}

	lock := flock.New(r.lockPath())
	locked, err := r.acquire(ctx, lock.TryLockContext)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", &LockTimeoutError{Path: r.path, Timeout: r.lockTimeout}
	}
	defer lock.Unlock()

	if err := r.writeAtomic(table); err != nil {
		return "", err
	}

	r.logger.Info().
		Str("file", r.path).
		Int("rows", len(table.Rows)).
		Str("backup", backupPath).
		Msg("Source file saved")

	return backupPath, nil
}

// ReplaceWith swaps the source file content for a fetched CSV payload after a
// sanity parse (valid header, at least one data row). The previous file is
// backed up first. Returns the backup path.
func (r *Repository) ReplaceWith(ctx context.Context, data []byte) (string, error) {
	table, err := Parse(bytes.NewReader(data), r.key)
	if err != nil {
		return "", fmt.Errorf("fetched payload is not a valid source file: %w", err)
	}
	if len(table.Rows) == 0 {
		return "", fmt.Errorf("fetched payload contains no host rows: %w", ErrEmptyWrite)
	}

	backupPath, err := r.backupIfExists()
	if err != nil {
		return "", fmt.Errorf("failed to back up source file: %w", err)
	}

	lock := flock.New(r.lockPath())
	locked, err := r.acquire(ctx, lock.TryLockContext)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", &LockTimeoutError{Path: r.path, Timeout: r.lockTimeout}
	}
	defer lock.Unlock()

	if err := r.writeAtomicBytes(data); err != nil {
		return "", err
	}

	r.logger.Info().
		Str("file", r.path).
		Int("rows", len(table.Rows)).
		Str("backup", backupPath).
		Msg("Source file replaced from fetched payload")

	return backupPath, nil
}

// Backup copies the current source file into the backup directory with a
// timestamped name that is never overwritten. Missing source is an error.
func (r *Repository) Backup() (string, error) {
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return "", &SourceNotFoundError{Path: r.path, Err: err}
		}
		return "", fmt.Errorf("failed to stat source file: %w", err)
	}
	return r.writeBackup()
}

// acquire runs one of flock's TryLockContext variants under the repository's
// lock timeout, translating a deadline into a nil-error "not locked" result.
func (r *Repository) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) (bool, error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	locked, err := try(lockCtx, r.retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock on %s: %w", r.path, err)
	}
	return locked, nil
}

func (r *Repository) lockPath() string {
	return r.path + ".lock"
}

// backupIfExists backs up the current file, or reports no backup when the
// source does not exist yet (first save).
func (r *Repository) backupIfExists() (string, error) {
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return r.writeBackup()
}

func (r *Repository) writeBackup() (string, error) {
	dir := r.backupDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(r.path), dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path))
	stamp := r.now().Format("20060102_150405")

	backupPath := filepath.Join(dir, fmt.Sprintf("%s_backup_%s.csv", stem, stamp))
	for n := 2; ; n++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		backupPath = filepath.Join(dir, fmt.Sprintf("%s_backup_%s_%d.csv", stem, stamp, n))
	}

	if err := copyFile(r.path, backupPath); err != nil {
		return "", err
	}

	r.logger.Debug().Str("backup", backupPath).Msg("Source backup written")
	return backupPath, nil
}

// writeAtomic serializes the table to a temp file in the target directory and
// renames it over the source file.
func (r *Repository) writeAtomic(table *Table) error {
	serialize := func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(table.Headers); err != nil {
			return err
		}
		for _, row := range table.Rows {
			record := make([]string, len(table.Headers))
			for i, h := range table.Headers {
				record[i] = row.Fields[h]
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	return r.replaceFile(serialize)
}

// writeAtomicBytes writes raw bytes via the same temp-file + rename path.
func (r *Repository) writeAtomicBytes(data []byte) error {
	return r.replaceFile(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (r *Repository) replaceFile(serialize func(io.Writer) error) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := serialize(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace source file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	// O_EXCL enforces the never-overwrite rule for backups.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}

// Parse reads CSV content into a Table. Rows whose resolved identity is empty
// or starts with "#" are skipped; short rows are padded with empty cells.
func Parse(reader io.Reader, key model.InventoryKey) (*Table, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	for _, required := range requiredHeaders {
		if !containsHeader(headers, required) {
			return nil, fmt.Errorf("header is missing required column %q", required)
		}
	}

	table := &Table{Headers: headers}
	for i, record := range records[1:] {
		fields := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(record) {
				fields[h] = record[j]
			} else {
				fields[h] = ""
			}
		}

		identity := resolveIdentity(fields, key)
		if identity == "" || strings.HasPrefix(identity, "#") {
			continue
		}

		table.Rows = append(table.Rows, Row{Line: i + 2, Fields: fields})
	}

	return table, nil
}

// resolveIdentity mirrors the model's identity resolution on a raw row: the
// configured key, falling back to the other name column.
func resolveIdentity(fields map[string]string, key model.InventoryKey) string {
	primary, fallback := "hostname", "cname"
	if key == model.KeyCNAME {
		primary, fallback = "cname", "hostname"
	}
	if v := strings.TrimSpace(fields[primary]); v != "" {
		return v
	}
	return strings.TrimSpace(fields[fallback])
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
