package pricing

import (
	"fmt"
	"strings"
)

// Formatter formats cost estimates for display.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns a boxed cost breakdown for terminal display.
func (f *Formatter) Format(e *Estimate) string {
	var sb strings.Builder

	width := 45

	sb.WriteString(boxTop(width))
	sb.WriteString(boxLine("emc cost estimate", width))
	sb.WriteString(boxLine(fmt.Sprintf("Server: %s in %s", e.ServerType, e.Location), width))
	sb.WriteString(boxSep(width))
	for _, row := range e.Rows() {
		sb.WriteString(boxLine(fmt.Sprintf("%-12s %14.4f %s", row.Period, row.Amount, e.Currency), width))
	}
	sb.WriteString(boxBottom(width))
	sb.WriteString(fmt.Sprintf("\n  Prices include %.0f%% VAT\n", e.VATRate*100))

	return sb.String()
}

// Row is one period of an estimate.
type Row struct {
	Period string
	Amount float64
}

// Rows lists the estimate by period, shortest first.
func (e *Estimate) Rows() []Row {
	return []Row{
		{"per hour", e.Hourly},
		{"per day", e.Daily},
		{"per month", e.Monthly},
		{"per year", e.Yearly},
	}
}

// Helper functions for box drawing

func boxTop(width int) string {
	return fmt.Sprintf("┌%s┐\n", strings.Repeat("─", width-2))
}

func boxBottom(width int) string {
	return fmt.Sprintf("└%s┘\n", strings.Repeat("─", width-2))
}

func boxSep(width int) string {
	return fmt.Sprintf("├%s┤\n", strings.Repeat("─", width-2))
}

func boxLine(text string, width int) string {
	padding := width - 4 - len(text)
	if padding < 0 {
		padding = 0
		text = text[:width-4]
	}
	return fmt.Sprintf("│ %s%s │\n", text, strings.Repeat(" ", padding))
}
