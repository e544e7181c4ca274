// Package fiji reads the CSV tables exported by Fiji/ImageJ intensity
// measurements and standardizes them into the measurement domain model.
package fiji

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"imgquant/domain/measure"
	"imgquant/internal/errors"
)

// Reader ingests one Fiji CSV export. Implements ports.DatasetSource.
type Reader struct {
	filePath string
}

// NewReader creates a reader for the given CSV path
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// Read parses the CSV into a Dataset. Column handling mirrors the Fiji
// export quirks: blank padding columns are dropped, "file" and "series"
// identify the image, every remaining numeric column becomes a response
// variable. The experimental group is the first rune of the filename. The
// image id joins the first two underscore-separated filename parts with the
// series; a filename that cannot be split that way keeps the whole filename
// as the base and is flagged with a warning rather than silently accepted.
func (r *Reader) Read(ctx context.Context) (*measure.Dataset, []measure.IngestWarning, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, nil, errors.IngestError(fmt.Sprintf("cannot open %s", r.filePath), err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.IngestError(fmt.Sprintf("cannot parse %s", r.filePath), err)
	}
	if len(records) < 2 {
		return nil, nil, errors.IngestError(fmt.Sprintf("%s has no data rows", r.filePath), nil)
	}

	header := records[0]
	fileCol, seriesCol := -1, -1
	var responseCols []int
	var responseVars []string
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		switch trimmed {
		case "":
			// blank padding column from the Fiji export
		case "file":
			fileCol = i
		case "series":
			seriesCol = i
		default:
			responseCols = append(responseCols, i)
			responseVars = append(responseVars, trimmed)
		}
	}
	if fileCol < 0 || seriesCol < 0 {
		return nil, nil, errors.IngestError("missing required columns file/series", nil)
	}
	if len(responseCols) == 0 {
		return nil, nil, errors.IngestError("no numeric response columns found", nil)
	}

	var warnings []measure.IngestWarning
	rows := make([]measure.Measurement, 0, len(records)-1)
	for rowNum, rec := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		file := strings.TrimSpace(rec[fileCol])
		series := strings.TrimSpace(rec[seriesCol])
		if file == "" {
			warnings = append(warnings, measure.IngestWarning{
				Row: rowNum + 2, Reason: "empty filename, row skipped",
			})
			continue
		}

		imageID, fellBack := imageIDFrom(file, series)
		if fellBack {
			warnings = append(warnings, measure.IngestWarning{
				File: file, Row: rowNum + 2,
				Reason: "filename not in prefix_slide_series form, kept whole filename as image id base",
			})
		}

		values := make(map[string]float64, len(responseCols))
		for k, col := range responseCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				warnings = append(warnings, measure.IngestWarning{
					File: file, Row: rowNum + 2,
					Reason: fmt.Sprintf("non-numeric %s value %q, dropped", responseVars[k], rec[col]),
				})
				continue
			}
			values[responseVars[k]] = v
		}

		rows = append(rows, measure.Measurement{
			ImageID: imageID,
			File:    file,
			Series:  series,
			Group:   groupFrom(file),
			Values:  values,
		})
	}

	ds, err := measure.NewDataset(responseVars, rows)
	if err != nil {
		return nil, warnings, err
	}
	return ds, warnings, nil
}

// groupFrom extracts the experimental group: the first rune of the filename
func groupFrom(file string) string {
	for _, r := range file {
		return string(r)
	}
	return ""
}

// imageIDFrom builds the unique image identifier. The second return value
// reports the fallback branch: a filename without two underscore-separated
// parts keeps its whole name as the base.
func imageIDFrom(file, series string) (string, bool) {
	parts := strings.Split(file, "_")
	if len(parts) >= 2 {
		return parts[0] + "_" + parts[1] + "_" + series, false
	}
	return file + "_" + series, true
}
