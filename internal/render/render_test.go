package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func sampleTable() *Table {
	t := &Table{
		Title:   "Positions",
		Columns: []string{"Symbol", "Qty", "P/L"},
	}
	t.AddRow("AAPL", "10", "+$50.00")
	t.AddRow("MSFT", "2.5", "-$3.10")
	return t
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().Write(&buf, "table"); err != nil {
		t.Fatalf("Write(table) error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Symbol", "AAPL", "MSFT", "+$50.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTableStyledAlignment(t *testing.T) {
	// A styled cell carries invisible escape bytes. Column widths must come
	// from visible width, or the next column drifts on styled rows.
	tbl := &Table{Columns: []string{"Symbol", "P/L"}}
	tbl.AddRow("AAPL", Signed("+$50.00", true))
	tbl.AddRow("GOOG", "-$3.10")

	var buf bytes.Buffer
	if err := tbl.Write(&buf, "table"); err != nil {
		t.Fatalf("Write(table) error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want 3", len(lines))
	}
	styledCol := strings.Index(stripStyles(lines[1]), "+$50.00")
	plainCol := strings.Index(stripStyles(lines[2]), "-$3.10")
	if styledCol != plainCol {
		t.Errorf("P/L column starts at %d on styled row, %d on plain row", styledCol, plainCol)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().Write(&buf, "json"); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0]["Symbol"] != "AAPL" {
		t.Errorf("records[0][Symbol] = %q, want %q", records[0]["Symbol"], "AAPL")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().Write(&buf, "csv"); err != nil {
		t.Fatalf("Write(csv) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want 3", len(lines))
	}
	if lines[0] != "Symbol,Qty,P/L" {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().Write(&buf, "xml"); err == nil {
		t.Error("Write(xml) = nil, want error")
	}
}

func TestStripStyles(t *testing.T) {
	styled := Signed("+1.00%", true)
	if got := stripStyles(styled); got != "+1.00%" {
		t.Errorf("stripStyles(%q) = %q, want %q", styled, got, "+1.00%")
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567.891", "$1,234,567.89"},
		{"0", "$0.00"},
		{"-45.5", "-$45.50"},
		{"999", "$999.00"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := Currency(d); got != tt.want {
			t.Errorf("Currency(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	up := decimal.RequireFromString("0.0132")
	if got := Percent(up); got != "+1.32%" {
		t.Errorf("Percent(0.0132) = %q, want %q", got, "+1.32%")
	}
	down := decimal.RequireFromString("-0.2")
	if got := Percent(down); got != "-20.00%" {
		t.Errorf("Percent(-0.2) = %q, want %q", got, "-20.00%")
	}
}

func TestQty(t *testing.T) {
	if got := Qty(decimal.NewFromInt(10)); got != "10" {
		t.Errorf("Qty(10) = %q, want %q", got, "10")
	}
	if got := Qty(decimal.RequireFromString("2.500000")); got != "2.5" {
		t.Errorf("Qty(2.5) = %q, want %q", got, "2.5")
	}
}
