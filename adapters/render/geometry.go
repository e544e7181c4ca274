// Package render turns collapsed per-image values into bar-chart geometry
// and draws the annotated chart as SVG.
package render

import (
	"math"

	"imgquant/domain/measure"
	"imgquant/domain/plot"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// GroupBar is one group's bar: mean of the per-image values with the
// half-width of its 95% confidence interval
type GroupBar struct {
	Group  string  `json:"group"`
	Mean   float64 `json:"mean"`
	CIHalf float64 `json:"ci_half"`
	N      int     `json:"n"`
}

// ChartBuilder computes chart geometry from per-image summaries.
// Implements ports.ChartBuilder.
type ChartBuilder struct{}

// NewChartBuilder creates a chart builder
func NewChartBuilder() *ChartBuilder {
	return &ChartBuilder{}
}

// BuildBars computes the group means and 95% CI extents over per-image
// values, one bar per group in GroupSet order
func (b *ChartBuilder) BuildBars(summaries []measure.ImageSummary, groups measure.GroupSet) []GroupBar {
	byGroup := make(map[string][]float64)
	for _, s := range summaries {
		byGroup[s.Group] = append(byGroup[s.Group], s.Mean)
	}

	bars := make([]GroupBar, 0, len(groups))
	for _, g := range groups {
		values := byGroup[g]
		bar := GroupBar{Group: g, N: len(values)}
		if len(values) == 0 {
			bars = append(bars, bar)
			continue
		}
		bar.Mean, _ = stats.Mean(values)
		if len(values) > 1 {
			sd, _ := stats.StandardDeviationSample(values)
			sem := sd / math.Sqrt(float64(len(values)))
			tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(values) - 1)}
			bar.CIHalf = tDist.Quantile(0.975) * sem
		}
		bars = append(bars, bar)
	}
	return bars
}

// Build computes the chart: categorical positions in GroupSet order,
// top-of-bar heights including the error-bar extent, and an axis that
// covers the bars with a small headroom
func (b *ChartBuilder) Build(summaries []measure.ImageSummary, groups measure.GroupSet) plot.Chart {
	bars := b.BuildBars(summaries, groups)

	chart := plot.Chart{Geometry: make([]plot.BarGeometry, 0, len(bars))}
	lower, maxTop := 0.0, math.Inf(-1)
	for i, bar := range bars {
		top := bar.Mean + bar.CIHalf
		chart.Geometry = append(chart.Geometry, plot.BarGeometry{
			Group:    bar.Group,
			Position: i,
			Top:      top,
		})
		if bar.Mean-bar.CIHalf < lower {
			lower = bar.Mean - bar.CIHalf
		}
		if top > maxTop {
			maxTop = top
		}
	}

	if math.IsInf(maxTop, -1) {
		maxTop = 1
	}
	span := maxTop - lower
	if span <= 0 {
		span = 1
	}
	chart.Axis = plot.Axis{Lower: lower, Upper: maxTop + 0.05*span}
	return chart
}
