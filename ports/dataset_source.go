package ports

import (
	"context"

	"imgquant/domain/measure"
)

// DatasetSource reads a tabular measurement source into the domain model.
// Warnings describe rows accepted in degraded form (identifier fallbacks);
// they never abort ingestion.
type DatasetSource interface {
	Read(ctx context.Context) (*measure.Dataset, []measure.IngestWarning, error)
}
