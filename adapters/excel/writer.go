// Package excel exports comparison tables as .xlsx workbooks.
package excel

import (
	"imgquant/domain/stats"
	"imgquant/internal/errors"

	"github.com/xuri/excelize/v2"
)

var comparisonHeader = []string{
	"group1", "group2", "estimate", "se", "t_value",
	"p_value", "p_value_adj", "ci_lower", "ci_upper",
}

// WriteComparisons writes one row per comparison, in input order, to a
// single-sheet workbook at the given path
func WriteComparisons(path string, comparisons []stats.ComparisonResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Comparisons"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range comparisonHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "invalid header cell")
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}

	for i, comp := range comparisons {
		values := []interface{}{
			comp.Group1, comp.Group2, comp.Estimate, comp.SE, comp.TValue,
			comp.PValue, comp.PValueAdj, comp.CILower, comp.CIUpper,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return errors.Wrap(err, "invalid data cell")
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrapf(err, "failed to write comparison row %d", i+1)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}
