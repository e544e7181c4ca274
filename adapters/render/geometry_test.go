package render

import (
	"testing"

	"imgquant/domain/measure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(imageID, group string, mean float64) measure.ImageSummary {
	return measure.ImageSummary{ImageID: imageID, Group: group, Mean: mean, SampleSize: 4}
}

func TestBuildBars(t *testing.T) {
	summaries := []measure.ImageSummary{
		summary("a1", "A", 1.0),
		summary("a2", "A", 2.0),
		summary("a3", "A", 3.0),
		summary("b1", "B", 5.0),
	}
	bars := NewChartBuilder().BuildBars(summaries, measure.GroupSet{"A", "B"})
	require.Len(t, bars, 2)

	assert.Equal(t, "A", bars[0].Group)
	assert.InDelta(t, 2.0, bars[0].Mean, 1e-12)
	assert.Equal(t, 3, bars[0].N)
	// sd=1, sem=1/sqrt(3), t_{0.975, df=2} ~ 4.3027
	assert.InDelta(t, 4.3027/1.7320508, bars[0].CIHalf, 1e-3)

	// a single image has no spread to estimate
	assert.Equal(t, "B", bars[1].Group)
	assert.InDelta(t, 5.0, bars[1].Mean, 1e-12)
	assert.Zero(t, bars[1].CIHalf)
}

func TestBuild_ChartGeometry(t *testing.T) {
	summaries := []measure.ImageSummary{
		summary("a1", "A", 1.0),
		summary("a2", "A", 2.0),
		summary("b1", "B", 4.0),
		summary("b2", "B", 6.0),
	}
	chart := NewChartBuilder().Build(summaries, measure.GroupSet{"A", "B"})

	require.Len(t, chart.Geometry, 2)
	assert.Equal(t, 0, chart.Geometry[0].Position)
	assert.Equal(t, 1, chart.Geometry[1].Position)
	assert.Equal(t, "A", chart.Geometry[0].Group)

	// tops include the error-bar extent
	assert.Greater(t, chart.Geometry[0].Top, 1.5)
	assert.Greater(t, chart.Geometry[1].Top, 5.0)

	// axis covers the tallest bar with headroom
	maxTop := chart.Geometry[1].Top
	assert.Greater(t, chart.Axis.Upper, maxTop)
	assert.LessOrEqual(t, chart.Axis.Lower, 0.0)
}

func TestBuild_EmptySummaries(t *testing.T) {
	chart := NewChartBuilder().Build(nil, measure.GroupSet{"A"})
	require.Len(t, chart.Geometry, 1)
	assert.Positive(t, chart.Axis.Range())
}
