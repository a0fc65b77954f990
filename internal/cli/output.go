package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"shipment-parser/internal/export"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/summary"
)

// maxCellWidth bounds table cells in display columns; product names can be
// very long.
const maxCellWidth = 40

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format  string
	quiet   bool
	noColor bool

	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	borderStyle lipgloss.Style
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return NewOutputFormatterWithColor(format, quiet, false)
}

// NewOutputFormatterWithColor creates a formatter that can be told to skip
// colors
func NewOutputFormatterWithColor(format string, quiet, noColor bool) *OutputFormatter {
	f := &OutputFormatter{
		format:      format,
		quiet:       quiet,
		noColor:     noColor,
		headerStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cellStyle:   lipgloss.NewStyle().Padding(0, 1),
		borderStyle: lipgloss.NewStyle(),
	}
	if !noColor {
		f.headerStyle = f.headerStyle.Foreground(lipgloss.Color("12"))
		f.borderStyle = f.borderStyle.Foreground(lipgloss.Color("240"))
	}
	return f
}

// RecordsOutput is the JSON document printed for a parse result
type RecordsOutput struct {
	RunID    string                 `json:"run_id"`
	Strategy string                 `json:"strategy"`
	Records  []parser.PackageRecord `json:"records"`
	Warnings []string               `json:"warnings,omitempty"`
	Summary  summary.Summary        `json:"summary"`
}

// PrintRecords prints the records of a parse result
func (f *OutputFormatter) PrintRecords(result *parser.Result) error {
	if f.quiet {
		for _, rec := range result.Records {
			fmt.Println(rec.TrackingNumber)
		}
		return nil
	}

	switch f.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(RecordsOutput{
			RunID:    result.RunID,
			Strategy: result.Strategy,
			Records:  result.Records,
			Warnings: result.Warnings,
			Summary:  summary.Summarize(result.Records),
		})
	case "table":
		return f.printRecordsTable(result.Records)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintSummary prints the shipment and package counts and the total weight.
// JSON output already carries the summary.
func (f *OutputFormatter) PrintSummary(s summary.Summary) {
	if f.quiet || f.format == "json" {
		return
	}

	f.PrintSuccess(fmt.Sprintf("成功解析 %d 個新竹包裹，共 %d 個小包裹", s.Shipments, s.Packages))
	if len(s.MalformedWeights) > 0 {
		f.PrintWarning(fmt.Sprintf("無法計算總重量，部分重量數據格式異常: %s", strings.Join(s.MalformedWeights, ", ")))
		return
	}
	f.PrintInfo("總重量: " + summary.WeightString(s.TotalWeight))
}

// PrintRaw prints the pasted text under a heading
func (f *OutputFormatter) PrintRaw(text string) {
	if f.quiet || f.format == "json" {
		return
	}
	fmt.Println(f.headerStyle.UnsetPadding().Render("原始資料"))
	fmt.Println(text)
	fmt.Println()
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Printf("✓ %s\n", message)
	}
}

// PrintWarning prints a warning to stderr
func (f *OutputFormatter) PrintWarning(message string) {
	if !f.quiet {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Printf("ℹ %s\n", message)
	}
}

// printRecordsTable prints records in a bordered table
func (f *OutputFormatter) printRecordsTable(records []parser.PackageRecord) error {
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := export.Row(rec)
		for j := range row {
			row[j] = truncate(row[j], maxCellWidth)
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		Headers(export.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return f.headerStyle
			}
			return f.cellStyle
		})

	fmt.Println(t.Render())
	return nil
}

// truncate shortens s to maxWidth display columns
func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}
