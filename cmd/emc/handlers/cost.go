package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/pricing"
)

var (
	costColorBlue  = lipgloss.Color("#3b82f6")
	costColorDim   = lipgloss.Color("#6b7280")
	costColorWhite = lipgloss.Color("#f9fafb")
)

var (
	costTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(costColorWhite)

	costSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(costColorBlue)

	costDimStyle = lipgloss.NewStyle().
			Foreground(costColorDim)
)

// Factory function variables for the launch confirmation - can be replaced in tests.
var (
	fetchPrices = pricing.FetchOrDefault

	isInteractive = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	askConfirm = func(ctx context.Context, title string) (bool, error) {
		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Affirmative("Launch").
					Negative("Cancel").
					Value(&ok),
			),
		).RunWithContext(ctx)
		return ok, err
	}
)

// estimate prices serverType in location. Live prices are used when a
// token is available.
func estimate(ctx context.Context, token, serverType, location string) (*pricing.Estimate, bool, error) {
	prices, live := fetchPrices(ctx, token)
	est, err := pricing.NewCalculatorWithPrices(prices).Calculate(serverType, location)
	if err != nil {
		return nil, false, err
	}
	return est, live, nil
}

// renderCost produces the lipgloss-styled cost table shown before a launch.
func renderCost(name string, est *pricing.Estimate, live bool) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(costTitleStyle.Render(fmt.Sprintf("  emc launch: %s", name)))
	b.WriteString("\n")
	b.WriteString(costDimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(costSectionStyle.Render(fmt.Sprintf("  %s in %s", est.ServerType, est.Location)))
	b.WriteString("\n")
	b.WriteString(costDimStyle.Render("  " + strings.Repeat("─", 30)))
	b.WriteString("\n")
	for _, row := range est.Rows() {
		fmt.Fprintf(&b, "  %-12s %s %10.4f\n", row.Period, est.Currency, row.Amount)
	}
	b.WriteString(costDimStyle.Render("  " + strings.Repeat("─", 30)))
	b.WriteString("\n")

	source := "fallback price table"
	if live {
		source = "live Hetzner pricing"
	}
	b.WriteString(costDimStyle.Render(fmt.Sprintf("  incl. %.0f%% VAT, %s", est.VATRate*100, source)))
	b.WriteString("\n")
	return b.String()
}

// confirmLaunch asks the operator to accept the cost. Without a terminal
// the answer cannot be collected, so --yes is required.
func confirmLaunch(ctx context.Context, name string, yes bool) error {
	if yes {
		return nil
	}
	if !isInteractive() {
		return errs.New(errs.Aborted, "stdin is not a terminal; pass --yes to launch %s", name)
	}
	ok, err := askConfirm(ctx, fmt.Sprintf("Launch %s?", name))
	if err != nil {
		return errs.Wrap(errs.Aborted, err, "confirmation cancelled")
	}
	if !ok {
		return errs.New(errs.Aborted, "launch of %s declined", name)
	}
	return nil
}
