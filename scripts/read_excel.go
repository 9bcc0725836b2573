//go:build ignore
// +build ignore

// This script reads and displays the contents of an Excel report for verification.
package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func main() {
	f, err := excelize.OpenFile("sample_inventory_report.xlsx")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	fmt.Println()

	// Summary sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Summary")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 16; row++ {
		a, _ := f.GetCellValue("Summary", fmt.Sprintf("A%d", row))
		b, _ := f.GetCellValue("Summary", fmt.Sprintf("B%d", row))
		if a != "" || b != "" {
			fmt.Printf("  %-24s %s\n", a, b)
		}
	}
	fmt.Println()

	// Hosts sheet - headers
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Hosts (headers)")
	fmt.Println("═══════════════════════════════════════")
	headers := []string{}
	for col := 1; col <= 20; col++ {
		cell := columnName(col) + "1"
		v, _ := f.GetCellValue("Hosts", cell)
		if v == "" {
			break
		}
		headers = append(headers, v)
	}
	for i, h := range headers {
		fmt.Printf("  [%d] %s\n", i+1, h)
	}
	fmt.Println()

	// Hosts sheet - data rows
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Hosts (rows)")
	fmt.Println("═══════════════════════════════════════")
	for row := 2; row <= 8; row++ {
		hostname, _ := f.GetCellValue("Hosts", fmt.Sprintf("A%d", row))
		environment, _ := f.GetCellValue("Hosts", fmt.Sprintf("C%d", row))
		status, _ := f.GetCellValue("Hosts", fmt.Sprintf("D%d", row))
		products, _ := f.GetCellValue("Hosts", fmt.Sprintf("F%d", row))
		window, _ := f.GetCellValue("Hosts", fmt.Sprintf("I%d", row))
		if hostname != "" {
			fmt.Printf("  %-18s %-12s %-16s %-20s %s\n", hostname, environment, status, products, window)
		}
	}
	fmt.Println()

	// Environments sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Environments")
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Environment  | Code | Grace | Total | Active | Decommissioned")
	fmt.Println("  -------------+------+-------+-------+--------+---------------")
	for row := 2; row <= 6; row++ {
		env, _ := f.GetCellValue("Environments", fmt.Sprintf("A%d", row))
		code, _ := f.GetCellValue("Environments", fmt.Sprintf("B%d", row))
		grace, _ := f.GetCellValue("Environments", fmt.Sprintf("C%d", row))
		total, _ := f.GetCellValue("Environments", fmt.Sprintf("D%d", row))
		active, _ := f.GetCellValue("Environments", fmt.Sprintf("E%d", row))
		decommissioned, _ := f.GetCellValue("Environments", fmt.Sprintf("F%d", row))
		if env != "" {
			fmt.Printf("  %-12s | %-4s | %-5s | %-5s | %-6s | %s\n", env, code, grace, total, active, decommissioned)
		}
	}
	fmt.Println()
	fmt.Println("✅ Excel report verified!")
	fmt.Println("   Open sample_inventory_report.xlsx in Excel to check the styling")
}

func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
