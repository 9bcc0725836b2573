// Package excel provides Excel report generation for the inventory tool.
// It implements the report.Writer interface to generate .xlsx files with
// an inventory snapshot: summary, per-host data, and environment breakdown.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"inventory-tool/internal/config"
	"inventory-tool/internal/model"
)

const (
	// Sheet names
	sheetSummary      = "Summary"
	sheetHosts        = "Hosts"
	sheetEnvironments = "Environments"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C" // Yellow background for decommissioned / degraded
	colorWarningFg  = "9C6500" // Dark yellow text
	colorCriticalBg = "FFC7CE" // Red background for poor / critical health
	colorCriticalFg = "9C0006" // Dark red text
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for active / healthy
	colorNormalFg   = "006100" // Dark green text

	// Column width bounds for auto sizing
	minColWidth = 10.0
	maxColWidth = 45.0
)

// Writer implements report.Writer for Excel format.
type Writer struct {
	timezone *time.Location
	policy   *config.Policy
}

// NewWriter creates a new Excel report writer. A nil timezone defaults to
// UTC; a nil policy defaults to the built-in operational policy.
func NewWriter(timezone *time.Location, policy *config.Policy) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Writer{
		timezone: timezone,
		policy:   policy,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write generates an Excel report from the inventory summary.
func (w *Writer) Write(summary *model.InventorySummary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("inventory summary is nil")
	}

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createSummarySheet(f, summary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := w.createHostsSheet(f, summary); err != nil {
		return fmt.Errorf("failed to create hosts sheet: %w", err)
	}

	if err := w.createEnvironmentsSheet(f, summary); err != nil {
		return fmt.Errorf("failed to create environments sheet: %w", err)
	}

	// Remove default Sheet1; ignore the error when it is already gone
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// createSummarySheet creates the inventory summary worksheet.
func (w *Writer) createSummarySheet(f *excelize.File, summary *model.InventorySummary) error {
	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  12,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheetSummary, "A", "A", 24)
	f.SetColWidth(sheetSummary, "B", "B", 32)

	// Title
	f.MergeCell(sheetSummary, "A1", "B1")
	f.SetCellValue(sheetSummary, "A1", "Host Inventory Report")
	f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)
	f.SetRowHeight(sheetSummary, 1, 30)

	// Summary data; a non-zero style overrides valueStyle for the value cell
	summaryData := []struct {
		label string
		value interface{}
		style int
	}{
		{"Generated at", summary.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05"), 0},
		{"Source file", summary.Source, 0},
		{"Total hosts", summary.TotalHosts, 0},
		{"Active hosts", summary.ActiveHosts, 0},
		{"Decommissioned hosts", summary.DecommissionedHosts, 0},
	}

	if health := summary.Health; health != nil {
		statusStyle, err := w.healthStyle(f, health.Status)
		if err != nil {
			return err
		}
		summaryData = append(summaryData, []struct {
			label string
			value interface{}
			style int
		}{
			{"Health score", fmt.Sprintf("%.1f / 100", health.Score), statusStyle},
			{"Health status", string(health.Status), statusStyle},
			{"Host vars coverage", fmt.Sprintf("%.1f%%", health.Coverage), 0},
			{"Orphaned files", len(health.OrphanedFiles), 0},
			{"Missing files", len(health.MissingFiles), 0},
			{"Syntax errors", len(health.SyntaxErrors), 0},
		}...)
	}

	if summary.Version != "" {
		summaryData = append(summaryData, struct {
			label string
			value interface{}
			style int
		}{"Tool version", summary.Version, 0})
	}

	for i, item := range summaryData {
		row := i + 3 // Start from row 3
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), item.value)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		style := item.style
		if style == 0 {
			style = valueStyle
		}
		f.SetCellStyle(sheetSummary, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), style)
		f.SetRowHeight(sheetSummary, row, 22)
	}

	return nil
}

// createHostsSheet creates the per-host worksheet.
func (w *Writer) createHostsSheet(f *excelize.File, summary *model.InventorySummary) error {
	_, err := f.NewSheet(sheetHosts)
	if err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	activeStyle, err := w.createNormalStyle(f)
	if err != nil {
		return err
	}

	retiredStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}

	headers := []string{
		"Hostname", "CNAME", "Environment", "Status", "Application Service",
		"Products", "Site", "Instance", "Patch Window", "Decommission Date",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetHosts, cell, header)
		f.SetCellStyle(sheetHosts, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetHosts, 1, 25)

	// Freeze header row
	f.SetPanes(sheetHosts, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	hosts := sortedHosts(summary.Hosts)
	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, w.hostRow(h))
	}

	for i, cells := range rows {
		row := i + 2 // Start from row 2
		rowStr := fmt.Sprintf("%d", row)

		for j, value := range cells {
			f.SetCellValue(sheetHosts, columnName(j+1)+rowStr, value)
		}

		// Color the status cell
		statusCell := "D" + rowStr
		if hosts[i].IsDecommissioned() {
			f.SetCellStyle(sheetHosts, statusCell, statusCell, retiredStyle)
		} else {
			f.SetCellStyle(sheetHosts, statusCell, statusCell, activeStyle)
		}
	}

	w.autoSizeColumns(f, sheetHosts, headers, rows)

	return nil
}

// createEnvironmentsSheet creates the per-environment breakdown worksheet.
func (w *Writer) createEnvironmentsSheet(f *excelize.File, summary *model.InventorySummary) error {
	_, err := f.NewSheet(sheetEnvironments)
	if err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Environment", "Code", "Grace Days", "Total Hosts", "Active", "Decommissioned"}

	colWidths := []float64{16, 8, 12, 12, 10, 16}
	for i, width := range colWidths {
		col := columnName(i + 1)
		f.SetColWidth(sheetEnvironments, col, col, width)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetEnvironments, cell, header)
		f.SetCellStyle(sheetEnvironments, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetEnvironments, 1, 25)

	f.SetPanes(sheetEnvironments, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	byEnv := summary.HostsByEnvironment()
	envs := make([]string, 0, len(byEnv))
	for env := range byEnv {
		envs = append(envs, env)
	}
	sort.Strings(envs)

	for i, env := range envs {
		row := i + 2
		rowStr := fmt.Sprintf("%d", row)

		var active, retired int
		for _, h := range byEnv[env] {
			if h.IsDecommissioned() {
				retired++
			} else {
				active++
			}
		}

		f.SetCellValue(sheetEnvironments, "A"+rowStr, env)
		f.SetCellValue(sheetEnvironments, "B"+rowStr, w.policy.EnvironmentCode(model.Environment(env)))
		f.SetCellValue(sheetEnvironments, "C"+rowStr, w.policy.GraceDays(model.Environment(env)))
		f.SetCellValue(sheetEnvironments, "D"+rowStr, len(byEnv[env]))
		f.SetCellValue(sheetEnvironments, "E"+rowStr, active)
		f.SetCellValue(sheetEnvironments, "F"+rowStr, retired)
	}

	return nil
}

// hostRow renders one host as the Hosts sheet cell values.
func (w *Writer) hostRow(h *model.Host) []string {
	return []string{
		h.Hostname,
		h.CNAME,
		string(h.Environment),
		string(h.Status),
		h.ApplicationService,
		strings.Join(h.ProductValues(), ", "),
		h.SiteCode,
		h.Instance,
		w.policy.PatchWindow(h.BatchNumber),
		h.DecommissionDate,
	}
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

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createWarningStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorWarningFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorWarningBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createCriticalStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorCriticalFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorCriticalBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createNormalStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorNormalFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorNormalBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// healthStyle maps a health tier to its cell style.
func (w *Writer) healthStyle(f *excelize.File, status model.HealthStatus) (int, error) {
	switch status {
	case model.HealthExcellent, model.HealthGood:
		return w.createNormalStyle(f)
	case model.HealthFair:
		return w.createWarningStyle(f)
	default:
		return w.createCriticalStyle(f)
	}
}

// autoSizeColumns sets each column width from its longest cell, clamped to
// the configured bounds.
func (w *Writer) autoSizeColumns(f *excelize.File, sheet string, headers []string, rows [][]string) {
	for i, header := range headers {
		longest := len(header)
		for _, cells := range rows {
			if i < len(cells) && len(cells[i]) > longest {
				longest = len(cells[i])
			}
		}
		width := min(max(float64(longest)+4, minColWidth), maxColWidth)
		col := columnName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
