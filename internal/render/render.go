// Package render draws run results for a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/xtding233/beanmachine/internal/galton"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	peakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// BarWidth is the number of cells of a bar at the expected peak.
const BarWidth = 40

// Chart plots actual counts against the count the binomial predicts.
// Boards with a single slot have nothing to plot and get "".
func Chart(counts []int, expected galton.Distribution, height int) string {
	if len(counts) < 2 {
		return ""
	}
	balls := 0
	for _, c := range counts {
		balls += c
	}
	actual := make([]float64, len(counts))
	want := make([]float64, len(counts))
	for k, c := range counts {
		actual[k] = float64(c)
		want[k] = expected.Probability(k) * float64(balls)
	}
	return asciigraph.PlotMany([][]float64{actual, want},
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("actual (green) vs expected (red)"),
	)
}

// Bars draws one row per slot. Bar length is the slot's share relative to
// the expected peak, so a slot matching the mode's probability fills BarWidth.
func Bars(counts []int, expected galton.Distribution) string {
	balls := 0
	for _, c := range counts {
		balls += c
	}
	var b strings.Builder
	for k, c := range counts {
		share := 0.0
		if balls > 0 {
			share = float64(c) / float64(balls)
		}
		n := int(expected.Relative(share)*BarWidth + 0.5)
		if n > 2*BarWidth {
			n = 2 * BarWidth
		}
		label := fmt.Sprintf("%3d %6d ", k, c)
		bar := barStyle.Render(strings.Repeat("█", n))
		if k == expected.Mode {
			bar = peakStyle.Render(strings.Repeat("█", n))
		}
		fmt.Fprintf(&b, "%s%s %5.1f%%\n", label, bar, 100*expected.Probability(k))
	}
	return b.String()
}

// Summary lays out the statistics of a finished run.
func Summary(st galton.Stats) string {
	rows := []struct {
		label string
		value string
	}{
		{"mean slot", fmt.Sprintf("%.3f (expected %.3f)", st.Mean, st.ExpectedMean)},
		{"variance", fmt.Sprintf("%.3f (expected %.3f)", st.Var, st.ExpectedVar)},
		{"p50 / p90 / p99", fmt.Sprintf("%.0f / %.0f / %.0f", st.P50, st.P90, st.P99)},
		{"chi-square", fmt.Sprintf("%.3f", st.ChiSquare)},
		{"total variation", fmt.Sprintf("%.4f", st.TotalVariation)},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r.label), valueStyle.Render(r.value))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Report is the full end-of-run view. stats may be nil for a cancelled run.
func Report(cfg galton.BoardConfig, expected galton.Distribution, counts []int, stats *galton.Stats) string {
	header := headerStyle.Render(fmt.Sprintf("bean machine: %d levels, %d balls, p=%.2f",
		cfg.Levels, cfg.BallCount, cfg.RightProbability))
	parts := []string{header, Bars(counts, expected)}
	if chart := Chart(counts, expected, 10); chart != "" {
		parts = append(parts, chart)
	}
	if stats != nil {
		parts = append(parts, Summary(*stats))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
