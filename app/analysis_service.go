package app

import (
	"context"

	"imgquant/domain/core"
	"imgquant/domain/measure"
	"imgquant/domain/plot"
	"imgquant/domain/stats"
	"imgquant/domain/stats/lme"
	"imgquant/internal"
	"imgquant/models"
	"imgquant/ports"
)

// AnalysisRequest defines one end-to-end analysis
type AnalysisRequest struct {
	Response    string
	Groups      []string // optional filter; empty keeps all groups
	Comparisons []stats.ContrastSpec
	Alpha       float64
	Method      stats.CorrectionMethod
}

// AnalysisResult carries everything downstream consumers need: the run
// record for persistence, the per-image summaries and chart for rendering,
// and the bracket layout.
type AnalysisResult struct {
	Run       *models.AnalysisRun
	Dataset   *measure.Dataset
	Summaries []measure.ImageSummary
	Chart     plot.Chart
	Layout    plot.LayoutResult
}

// AnalysisService orchestrates ingestion, model fitting, contrast
// evaluation, correction and bracket layout
type AnalysisService struct {
	source ports.DatasetSource
	charts ports.ChartBuilder
	log    *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(source ports.DatasetSource, charts ports.ChartBuilder, logger *internal.Logger) *AnalysisService {
	return &AnalysisService{
		source: source,
		charts: charts,
		log:    logger.WithComponent("analysis"),
	}
}

// Run executes the full pipeline. A failed fit aborts the run: every
// downstream comparison depends on it, so nothing partial is reported.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	ds, warnings, err := s.source.Read(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.log.Warn("ingest: %s", w.String())
	}

	ds = ds.FilterGroups(req.Groups)
	groups := ds.Groups()
	s.log.Info("dataset: %d rows, %d groups (baseline %s)", len(ds.Rows), len(groups), groups.Baseline())

	if req.Alpha == 0 {
		req.Alpha = 0.05
	}
	if req.Method == "" {
		req.Method = stats.CorrectionHolm
	}

	fit, err := lme.Fit(ds, req.Response)
	if err != nil {
		return nil, err
	}
	s.log.Info("fit: %d obs, %d images, image variance %.4g, residual variance %.4g",
		fit.NumObs, fit.NumClusters, fit.GroupVariance, fit.ResidVariance)

	comparisons, err := stats.Compare(ctx, fit, req.Comparisons)
	if err != nil {
		return nil, err
	}
	if err := stats.ApplyCorrection(comparisons, req.Method); err != nil {
		return nil, err
	}

	summaries, err := measure.Collapse(ds, req.Response)
	if err != nil {
		return nil, err
	}

	chart := s.charts.Build(summaries, groups)
	opts := plot.DefaultLayoutOptions()
	opts.Alpha = req.Alpha
	layout := plot.LayoutBrackets(chart, comparisons, opts)
	s.log.Info("layout: %d of %d comparisons significant at alpha %.3g",
		len(layout.Brackets), len(comparisons), req.Alpha)

	warningStrings := make([]string, 0, len(warnings))
	for _, w := range warnings {
		warningStrings = append(warningStrings, w.String())
	}

	run := &models.AnalysisRun{
		ID:            core.RunID(core.NewID()),
		CreatedAt:     core.Now(),
		Response:      req.Response,
		Method:        req.Method,
		Alpha:         req.Alpha,
		DatasetHash:   ds.Fingerprint(),
		NumObs:        fit.NumObs,
		NumImages:     fit.NumClusters,
		NumGroups:     len(groups),
		GroupVariance: fit.GroupVariance,
		ResidVariance: fit.ResidVariance,
		Comparisons:   comparisons,
		Warnings:      warningStrings,
	}

	return &AnalysisResult{
		Run:       run,
		Dataset:   ds,
		Summaries: summaries,
		Chart:     chart,
		Layout:    layout,
	}, nil
}
