package measure

import (
	"sort"

	"imgquant/domain/core"

	"github.com/montanaflynn/stats"
)

// ImageSummary is one image collapsed to a single response value.
// SampleSize records how many ROI measurements went into the mean.
type ImageSummary struct {
	ImageID    string  `json:"image_id"`
	File       string  `json:"file"`
	Series     string  `json:"series"`
	Group      string  `json:"group"`
	Mean       float64 `json:"mean"`
	SampleSize int     `json:"sample_size"`
}

// Collapse aggregates the dataset to one mean response value per image,
// ordered by image id. Downstream summaries that want one data point per
// image (bar charts, per-image exports) consume this instead of raw rows.
func Collapse(d *Dataset, responseVar string) ([]ImageSummary, error) {
	if !d.HasResponse(responseVar) {
		return nil, core.NewInvalidResponseError(responseVar, d.ResponseVars)
	}

	byImage := make(map[string][]float64)
	meta := make(map[string]Measurement)
	for _, row := range d.Rows {
		v, ok := row.Response(responseVar)
		if !ok {
			continue
		}
		if _, seen := byImage[row.ImageID]; !seen {
			meta[row.ImageID] = row
		}
		byImage[row.ImageID] = append(byImage[row.ImageID], v)
	}

	ids := make([]string, 0, len(byImage))
	for id := range byImage {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]ImageSummary, 0, len(ids))
	for _, id := range ids {
		mean, err := stats.Mean(byImage[id])
		if err != nil {
			continue
		}
		first := meta[id]
		summaries = append(summaries, ImageSummary{
			ImageID:    id,
			File:       first.File,
			Series:     first.Series,
			Group:      first.Group,
			Mean:       mean,
			SampleSize: len(byImage[id]),
		})
	}
	return summaries, nil
}
