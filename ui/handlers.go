package ui

import (
	"net/http"

	"imgquant/app"
	"imgquant/domain/core"
	"imgquant/domain/stats"
	"imgquant/internal/errors"

	"github.com/gin-gonic/gin"
)

// analyzeRequest is the JSON body for POST /api/v1/analyses. Fields left
// empty fall back to the server's configured analysis settings.
type analyzeRequest struct {
	Response    string     `json:"response"`
	Groups      []string   `json:"groups"`
	Comparisons [][]string `json:"comparisons"`
	Alpha       float64    `json:"alpha"`
	Correction  string     `json:"correction"`
}

// handleAnalyze runs the pipeline against the configured dataset and
// returns the corrected comparisons with the bracket layout
func (s *Server) handleAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req := app.AnalysisRequest{
		Response: body.Response,
		Groups:   body.Groups,
		Alpha:    body.Alpha,
	}
	if req.Response == "" {
		req.Response = s.cfg.Analysis.Response
	}
	if req.Alpha == 0 {
		req.Alpha = s.cfg.Analysis.Alpha
	}
	if len(req.Groups) == 0 {
		req.Groups = s.cfg.Input.Groups
	}

	correction := body.Correction
	if correction == "" {
		correction = s.cfg.Analysis.Correction
	}
	method, err := stats.ParseCorrectionMethod(correction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Method = method

	for _, pair := range body.Comparisons {
		if len(pair) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "comparison entries must name exactly two groups"})
			return
		}
		req.Comparisons = append(req.Comparisons, stats.ContrastSpec{Group1: pair[0], Group2: pair[1]})
	}
	if len(req.Comparisons) == 0 {
		req.Comparisons = s.cfg.ContrastSpecs()
	}

	result, err := s.service.Run(c.Request.Context(), req)
	if err != nil {
		s.log.Error("analysis failed: %v (code %s)", err, errors.GetCode(err))
		status := http.StatusInternalServerError
		if core.IsInvalidResponseError(err) || core.IsUnknownGroupError(err) {
			status = http.StatusBadRequest
		} else if core.IsModelFitError(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":     result.Run,
		"chart":   result.Chart,
		"layout":  result.Layout,
		"n_pairs": len(result.Run.Comparisons),
	})
}
