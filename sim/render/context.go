// Package render turns experiment aggregates and sweeps into terminal reports
// and CSV files. Nothing here affects simulation results.
package render

import (
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPalette is the color cycle used for company series.
var DefaultPalette = []lipgloss.Color{
	"#E4572E", "#29335C", "#F3A712", "#A8C686", "#669BBC",
	"#7B2D26", "#2E86AB", "#C73E1D", "#3B1F2B", "#44AF69",
}

// RenderContext assigns colors to series labels. Assignment follows first
// request order over a palette permutation drawn from the seed, so the same
// seed and label order always produce the same colors.
type RenderContext struct {
	Palette  []lipgloss.Color
	order    []int
	assigned map[string]lipgloss.Color
}

// NewRenderContext creates a context over palette; an empty palette falls back
// to DefaultPalette.
func NewRenderContext(seed int64, palette []lipgloss.Color) *RenderContext {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5bd1e995))
	return &RenderContext{
		Palette:  palette,
		order:    rng.Perm(len(palette)),
		assigned: make(map[string]lipgloss.Color),
	}
}

// ColorFor returns the color of label, assigning the next free one on first
// use. Labels past the palette size reuse colors cyclically.
func (rc *RenderContext) ColorFor(label string) lipgloss.Color {
	if c, ok := rc.assigned[label]; ok {
		return c
	}
	c := rc.Palette[rc.order[len(rc.assigned)%len(rc.order)]]
	rc.assigned[label] = c
	return c
}

// Style returns a bold foreground style in label's color.
func (rc *RenderContext) Style(label string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(rc.ColorFor(label))
}
