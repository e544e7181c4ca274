package models

import (
	"imgquant/domain/core"
	"imgquant/domain/stats"
)

// AnalysisRun is the persisted record of one end-to-end analysis: the
// dataset fingerprint, the fitted model's variance components, and the
// corrected comparison rows in evaluation order.
type AnalysisRun struct {
	ID            core.RunID               `json:"id" db:"id"`
	CreatedAt     core.Timestamp           `json:"created_at" db:"created_at"`
	Response      string                   `json:"response" db:"response"`
	Method        stats.CorrectionMethod   `json:"method" db:"method"`
	Alpha         float64                  `json:"alpha" db:"alpha"`
	DatasetHash   core.DatasetHash         `json:"dataset_hash" db:"dataset_hash"`
	NumObs        int                      `json:"num_obs" db:"num_obs"`
	NumImages     int                      `json:"num_images" db:"num_images"`
	NumGroups     int                      `json:"num_groups" db:"num_groups"`
	GroupVariance float64                  `json:"group_variance" db:"group_variance"`
	ResidVariance float64                  `json:"resid_variance" db:"resid_variance"`
	Comparisons   []stats.ComparisonResult `json:"comparisons"`
	Warnings      []string                 `json:"warnings,omitempty"`
}
