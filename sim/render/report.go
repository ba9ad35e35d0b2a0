package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/freight-sim/freight-sim/sim/experiment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as block characters, downsampled to at most width runes.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = downsample(values, width)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		i := 0
		if hi > lo {
			i = int((v - lo) / (hi - lo) * float64(len(sparkTicks)-1))
		}
		b.WriteRune(sparkTicks[i])
	}
	return b.String()
}

// downsample averages values into n buckets.
func downsample(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		from := i * len(values) / n
		to := (i + 1) * len(values) / n
		sum := 0.0
		for _, v := range values[from:to] {
			sum += v
		}
		out[i] = sum / float64(to-from)
	}
	return out
}

// Report renders a money-through-time experiment.
func Report(title string, agg *experiment.Aggregate, rc *RenderContext) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(fmt.Sprintf("%d trials × %d ticks, band ±%.0f%% (display only)",
		agg.Trials, agg.Iterations, experiment.DisplayBand*100)))
	s.WriteString("\n")

	rows := make([][]string, 0, len(agg.Companies))
	for _, c := range agg.Companies {
		rows = append(rows, []string{
			string(c.Company),
			fmt.Sprintf("%d", c.Node),
			fmt.Sprintf("%.2f", c.Final()),
			fmt.Sprintf("%.2f", math.Abs(c.Final())*experiment.DisplayBand),
			fmt.Sprintf("%d/%d", c.Bankruptcies, agg.Trials),
			Sparkline(c.Mean, 40),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers("Company", "Node", "Final mean", "±", "Bankrupt", "Trend").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if (col == 0 || col == 5) && row >= 0 && row < len(rows) {
				return rc.Style(rows[row][0]).Padding(0, 1)
			}
			return cellStyle
		})
	s.WriteString(t.Render())
	s.WriteString("\n")
	s.WriteString(statusLine(agg))
	s.WriteString("\n")
	return s.String()
}

func statusLine(agg *experiment.Aggregate) string {
	statuses := make([]string, 0, len(agg.Statuses))
	for st, n := range agg.Statuses {
		statuses = append(statuses, fmt.Sprintf("%s=%d", st, n))
	}
	sort.Strings(statuses)
	line := fmt.Sprintf("runs: %s | offers completed: %d | taxes/trial: %.2f | edges removed: %d | trucks lost: %d",
		strings.Join(statuses, " "), agg.CompletedOffers, agg.TaxesPaid, agg.EdgesRemoved, agg.TrucksLost)
	if agg.Trace != nil && agg.Trace.TotalOffers > 0 {
		line += fmt.Sprintf(" | acceptance: %.1f%%", agg.Trace.AcceptanceRate()*100)
	}
	return mutedStyle.Render(line)
}

// SweepReport renders a sweep as one table row per point and a trend line per series.
func SweepReport(res *experiment.SweepResult, rc *RenderContext) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", res.Name, res.ID)))
	s.WriteString("\n")
	if res.Best != "" {
		s.WriteString(mutedStyle.Render(fmt.Sprintf("varied company: %s", res.Best)))
		s.WriteString("\n")
	}

	for _, series := range res.Series {
		values := make([]float64, len(series.Points))
		for i, p := range series.Points {
			values[i] = p.Value
		}
		s.WriteString(rc.Style(series.Name).Render(series.Name))
		s.WriteString(" ")
		s.WriteString(Sparkline(values, 60))
		s.WriteString("\n")
	}

	if res.XLabel == "Time" {
		return s.String()
	}
	headers := []string{res.XLabel}
	for _, series := range res.Series {
		headers = append(headers, series.Name)
	}
	var rows [][]string
	if len(res.Series) > 0 {
		for i, p := range res.Series[0].Points {
			row := []string{formatX(p.X)}
			for _, series := range res.Series {
				if i < len(series.Points) {
					row = append(row, fmt.Sprintf("%.2f", series.Points[i].Value))
				} else {
					row = append(row, "")
				}
			}
			rows = append(rows, row)
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	s.WriteString(t.Render())
	s.WriteString("\n")
	return s.String()
}

func formatX(x float64) string {
	if x == math.Trunc(x) {
		return fmt.Sprintf("%d", int(x))
	}
	return fmt.Sprintf("%g", x)
}
