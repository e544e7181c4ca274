package ports

import (
	"context"

	"imgquant/models"
)

// RunRepository persists completed analysis runs and their comparison rows
type RunRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
}
