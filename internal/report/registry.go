// Package report provides report generation for inventory summaries.
// It defines the Writer interface and provides a registry for managing
// different report formats (Excel, HTML, etc.).
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"inventory-tool/internal/config"
	"inventory-tool/internal/report/excel"
	"inventory-tool/internal/report/html"
)

// Registry manages report writers for different formats.
// It provides a centralized way to access report writers by format name.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates a new report registry with pre-registered Excel and
// HTML writers. A nil timezone defaults to UTC and a nil policy to the
// built-in operational policy. htmlTemplatePath is optional; if empty, the
// HTML writer will use the embedded default template.
func NewRegistry(timezone *time.Location, policy *config.Policy, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}
	if policy == nil {
		policy = config.DefaultPolicy()
	}

	excelWriter := excel.NewWriter(timezone, policy)
	htmlWriter := html.NewWriter(timezone, policy, htmlTemplatePath)

	r := &Registry{
		writers: make(map[string]Writer),
	}

	// Register writers using their Format() return values
	r.writers[excelWriter.Format()] = excelWriter
	r.writers[htmlWriter.Format()] = htmlWriter

	return r
}

// Get returns a writer for the specified format.
// Format names are case-insensitive (e.g., "Excel", "EXCEL", "excel" all work).
// Returns an error if the format is not supported.
func (r *Registry) Get(format string) (Writer, error) {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalizedFormat]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
// Format names are case-insensitive.
func (r *Registry) Has(format string) bool {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalizedFormat]
	return ok
}
