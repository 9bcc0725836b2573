// Package report provides report generation for the inventory tool.
// It defines the Writer interface and provides implementations for
// different output formats including Excel and HTML.
package report

import (
	"inventory-tool/internal/model"
)

// Writer defines the interface for generating inventory reports.
// Implementations render an inventory summary to a file in their
// specific format (Excel, HTML, etc.).
type Writer interface {
	// Write renders the summary and saves it to the specified output
	// path. The path should include the file extension appropriate for
	// the format; implementations append it when missing.
	//
	// Returns an error if rendering or file writing fails.
	Write(summary *model.InventorySummary, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "excel" and "html".
	Format() string
}
