package ports

import (
	"imgquant/domain/measure"
	"imgquant/domain/plot"
)

// ChartBuilder computes bar-chart geometry (categorical positions and
// top-of-bar heights including error-bar extents) from per-image summaries.
// The layout engine treats this geometry as external input.
type ChartBuilder interface {
	Build(summaries []measure.ImageSummary, groups measure.GroupSet) plot.Chart
}
