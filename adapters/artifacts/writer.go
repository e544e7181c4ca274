// Package artifacts writes the per-run output folder: comparison tables,
// the rendered chart, the run report and a copy of the configuration used.
package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"imgquant/adapters/excel"
	"imgquant/domain/plot"
	"imgquant/internal"
	"imgquant/internal/config"
	"imgquant/internal/errors"
	"imgquant/models"

	"gopkg.in/yaml.v3"
)

// Writer saves analysis artifacts into a dated directory under a base path
type Writer struct {
	baseDir string
	log     *internal.Logger
}

// NewWriter creates an artifact writer rooted at baseDir
func NewWriter(baseDir string, logger *internal.Logger) *Writer {
	return &Writer{baseDir: baseDir, log: logger.WithComponent("artifacts")}
}

// Save writes all artifacts for a run and returns the output directory.
// The directory is named by the run date (YYYY-MM-DD) for reproducible,
// versionable output folders.
func (w *Writer) Save(run *models.AnalysisRun, layout plot.LayoutResult, chartSVG []byte, cfg *config.Config) (string, error) {
	outDir := filepath.Join(w.baseDir, run.CreatedAt.DateDir())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", outDir)
	}

	date := run.CreatedAt.DateDir()

	csvPath := filepath.Join(outDir, fmt.Sprintf("mixed_lme_results_%s.csv", date))
	if err := writeComparisonsCSV(csvPath, run); err != nil {
		return "", err
	}
	w.log.Info("saved comparison table to %s", csvPath)

	xlsxPath := filepath.Join(outDir, fmt.Sprintf("mixed_lme_results_%s.xlsx", date))
	if err := excel.WriteComparisons(xlsxPath, run.Comparisons); err != nil {
		return "", err
	}
	w.log.Info("saved comparison workbook to %s", xlsxPath)

	if len(chartSVG) > 0 {
		svgPath := filepath.Join(outDir, fmt.Sprintf("barplot_%s_%s.svg", run.Response, date))
		if err := os.WriteFile(svgPath, chartSVG, 0o644); err != nil {
			return "", errors.Wrapf(err, "failed to write chart %s", svgPath)
		}
		w.log.Info("saved chart to %s", svgPath)
	}

	reportPath := filepath.Join(outDir, "report.html")
	if err := os.WriteFile(reportPath, RenderReport(run, layout), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", reportPath)
	}
	w.log.Info("saved run report to %s", reportPath)

	// Copy of the effective configuration for analysis provenance
	if cfg != nil {
		cfgData, err := yaml.Marshal(cfg)
		if err != nil {
			return "", errors.Wrap(err, "failed to encode config copy")
		}
		cfgPath := filepath.Join(outDir, "config_used.yaml")
		if err := os.WriteFile(cfgPath, cfgData, 0o644); err != nil {
			return "", errors.Wrapf(err, "failed to write config copy %s", cfgPath)
		}
		w.log.Info("copied configuration to %s", cfgPath)
	}

	return outDir, nil
}

func writeComparisonsCSV(path string, run *models.AnalysisRun) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"group1", "group2", "estimate", "se", "t_value",
		"p_value", "p_value_adj", "ci_lower", "ci_upper",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, comp := range run.Comparisons {
		record := []string{
			comp.Group1,
			comp.Group2,
			fmt.Sprintf("%.10g", comp.Estimate),
			fmt.Sprintf("%.10g", comp.SE),
			fmt.Sprintf("%.10g", comp.TValue),
			fmt.Sprintf("%.10g", comp.PValue),
			fmt.Sprintf("%.10g", comp.PValueAdj),
			fmt.Sprintf("%.10g", comp.CILower),
			fmt.Sprintf("%.10g", comp.CIUpper),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}
