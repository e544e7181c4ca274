package plot

import (
	"math"

	"imgquant/domain/stats"
)

// LayoutOptions controls bracket filtering and spacing. All spacing
// constants are fractions of the axis's visible range so the layout scales
// with the chart itself.
type LayoutOptions struct {
	Alpha         float64 // significance threshold for drawing a bracket
	OffsetFrac    float64 // gap between the tallest endpoint bar and level 0
	BracketFrac   float64 // vertical thickness of one bracket slot
	ClearanceFrac float64 // gap between a bracket's tick top and its label
	TickFrac      float64 // connector height as a fraction of the bracket slot
}

// DefaultLayoutOptions returns the standard spacing: 5% bracket slots, 2%
// bar offset, 1% text clearance, ticks at 20% of a slot, alpha 0.05.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Alpha:         0.05,
		OffsetFrac:    0.02,
		BracketFrac:   0.05,
		ClearanceFrac: 0.01,
		TickFrac:      0.2,
	}
}

// LayoutBrackets places significance brackets over a categorical bar chart.
// Comparisons whose effective p-value (adjusted, falling back to raw) is at
// or above alpha, or not a valid number, are excluded. Survivors are placed
// in input order; a bracket whose x-span overlaps an already placed bracket
// is raised one level above the highest such bracket. This is greedy
// interval coloring: deterministic for a fixed input order, but the level
// count depends on that order and is not minimal in general. Comparisons
// naming groups absent from the chart geometry are skipped.
func LayoutBrackets(chart Chart, comparisons []stats.ComparisonResult, opts LayoutOptions) LayoutResult {
	positions := make(map[string]int, len(chart.Geometry))
	tops := make(map[string]float64, len(chart.Geometry))
	for _, g := range chart.Geometry {
		positions[g.Group] = g.Position
		tops[g.Group] = g.Top
	}

	yRange := chart.Axis.Range()
	offset := opts.OffsetFrac * yRange
	slot := opts.BracketFrac * yRange
	clearance := opts.ClearanceFrac * yRange
	tick := opts.TickFrac * slot

	result := LayoutResult{AxisUpper: chart.Axis.Upper}
	maxY := math.Inf(-1)

	for _, comp := range comparisons {
		p := comp.EffectivePValue()
		if math.IsNaN(p) || p >= opts.Alpha {
			continue
		}
		p1, ok1 := positions[comp.Group1]
		p2, ok2 := positions[comp.Group2]
		if !ok1 || !ok2 {
			continue
		}
		x1, x2 := p1, p2
		if x1 > x2 {
			x1, x2 = x2, x1
		}

		// Greedy level assignment against every placed bracket
		level := 0
		for _, placed := range result.Brackets {
			if x2 < placed.X1 || x1 > placed.X2 {
				continue
			}
			if placed.Level+1 > level {
				level = placed.Level + 1
			}
		}

		y := math.Max(tops[comp.Group1], tops[comp.Group2]) +
			offset + float64(level)*(slot+clearance)
		placement := BracketPlacement{
			X1:      x1,
			X2:      x2,
			Level:   level,
			Y:       y,
			TickTop: y + tick,
			LabelY:  y + tick + clearance,
			Label:   StarLabel(p),
		}
		result.Brackets = append(result.Brackets, placement)
		if placement.LabelY > maxY {
			maxY = placement.LabelY
		}
	}

	if maxY > chart.Axis.Upper {
		result.AxisUpper = maxY + offset
		result.AxisExtended = true
	}
	return result
}
