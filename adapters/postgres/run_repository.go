// Package postgres persists analysis runs for later querying.
package postgres

import (
	"context"
	"encoding/json"

	"imgquant/internal/errors"
	"imgquant/models"
	"imgquant/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// EnsureSchema creates the run tables if they do not exist
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		response TEXT NOT NULL,
		method TEXT NOT NULL,
		alpha DOUBLE PRECISION NOT NULL,
		dataset_hash TEXT NOT NULL,
		num_obs INTEGER NOT NULL,
		num_images INTEGER NOT NULL,
		num_groups INTEGER NOT NULL,
		group_variance DOUBLE PRECISION NOT NULL,
		resid_variance DOUBLE PRECISION NOT NULL,
		warnings JSONB NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS comparisons (
		run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		group1 TEXT NOT NULL,
		group2 TEXT NOT NULL,
		estimate DOUBLE PRECISION NOT NULL,
		se DOUBLE PRECISION NOT NULL,
		t_value DOUBLE PRECISION NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		p_value_adj DOUBLE PRECISION,
		ci_lower DOUBLE PRECISION NOT NULL,
		ci_upper DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.PersistenceError("failed to ensure run schema", err)
	}
	return nil
}

// SaveRun stores the run record and its comparison rows atomically
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return errors.PersistenceError("failed to encode warnings", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.PersistenceError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, created_at, response, method, alpha, dataset_hash,
			num_obs, num_images, num_groups, group_variance, resid_variance, warnings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID.String(), run.CreatedAt.Time(), run.Response, string(run.Method), run.Alpha,
		run.DatasetHash.String(), run.NumObs, run.NumImages, run.NumGroups,
		run.GroupVariance, run.ResidVariance, warningsJSON)
	if err != nil {
		return errors.PersistenceError("failed to insert run", err)
	}

	for i, comp := range run.Comparisons {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comparisons (
				run_id, position, group1, group2, estimate, se, t_value,
				p_value, p_value_adj, ci_lower, ci_upper
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			run.ID.String(), i, comp.Group1, comp.Group2, comp.Estimate, comp.SE,
			comp.TValue, comp.PValue, comp.PValueAdj, comp.CILower, comp.CIUpper)
		if err != nil {
			return errors.PersistenceError("failed to insert comparison row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.PersistenceError("failed to commit run", err)
	}
	return nil
}
