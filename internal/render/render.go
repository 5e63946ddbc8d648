// Package render formats command output as a styled table, JSON, or CSV.
// Every listing command shares the same Table type so --format and --export
// behave identically across the tool.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paperStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	liveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Table is a rectangular result set with named columns.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// AddRow appends one row; cells beyond len(Columns) are dropped.
func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.Columns) {
		cells = cells[:len(t.Columns)]
	}
	t.Rows = append(t.Rows, cells)
}

// Write renders the table to w in the given format: "table" (default),
// "json", or "csv".
func (t *Table) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return t.writeStyled(w)
	case "json":
		return t.writeJSON(w)
	case "csv":
		return t.writeCSV(w)
	default:
		return fmt.Errorf("unknown format %q, want table, json, or csv", format)
	}
}

// Export writes the table to path, choosing CSV or JSON from the file
// extension (.json gets JSON, everything else CSV).
func (t *Table) Export(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	format := "csv"
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		format = "json"
	}
	return t.Write(f, format)
}

func (t *Table) writeStyled(w io.Writer) error {
	// Widths count visible characters so styled cells and the padding in
	// padCell agree on column alignment.
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	if t.Title != "" {
		fmt.Fprintln(w, titleStyle.Render(t.Title))
	}

	var header strings.Builder
	for i, c := range t.Columns {
		if i > 0 {
			header.WriteString("  ")
		}
		header.WriteString(fmt.Sprintf("%-*s", widths[i], c))
	}
	fmt.Fprintln(w, headerStyle.Render(header.String()))

	for _, row := range t.Rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(padCell(cell, widths[i]))
		}
		fmt.Fprintln(w, line.String())
	}

	if len(t.Rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(no results)"))
	}
	return nil
}

// padCell pads to width counting visible characters, so styled cells do not
// break column alignment.
func padCell(cell string, width int) string {
	visible := lipgloss.Width(cell)
	if visible >= width {
		return cell
	}
	return cell + strings.Repeat(" ", width-visible)
}

func (t *Table) writeJSON(w io.Writer) error {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				rec[c] = stripStyles(row[i])
			}
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (t *Table) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		plain := make([]string, len(row))
		for i, cell := range row {
			plain[i] = stripStyles(cell)
		}
		if err := cw.Write(plain); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// stripStyles removes ANSI escape sequences so machine formats stay clean.
func stripStyles(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Signed colors a value green when positive and red when negative.
func Signed(s string, positive bool) string {
	if positive {
		return gainStyle.Render(s)
	}
	return lossStyle.Render(s)
}

// ModeTag renders a PAPER or LIVE badge so it is always obvious which
// account a command touched.
func ModeTag(paper bool) string {
	if paper {
		return paperStyle.Render("[PAPER]")
	}
	return liveStyle.Render("[LIVE]")
}

// Dim renders secondary text.
func Dim(s string) string {
	return dimStyle.Render(s)
}
