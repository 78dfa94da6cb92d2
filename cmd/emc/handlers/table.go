package handlers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var labelStyle = lipgloss.NewStyle().Foreground(costColorDim)

// renderTable draws rows under headers with a dim border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(costDimStyle).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// field prints one aligned "label: value" line.
func field(label, value string) {
	fmt.Fprintf(stdout, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
}
