// Command imgquant runs the full image-quantification analysis pipeline:
// ingest a Fiji CSV export, fit a random-intercept mixed model, evaluate
// corrected pairwise group contrasts, lay out significance brackets and
// save the resulting artifacts.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"imgquant/adapters/artifacts"
	"imgquant/adapters/fiji"
	"imgquant/adapters/postgres"
	"imgquant/adapters/render"
	"imgquant/app"
	"imgquant/internal"
	"imgquant/internal/config"
	"imgquant/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to analysis config")
	flag.Parse()

	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("pipeline failed: %v (code %s)", err, errors.GetCode(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *internal.Logger) error {
	source := fiji.NewReader(cfg.Input.CSVPath)
	charts := render.NewChartBuilder()
	service := app.NewAnalysisService(source, charts, logger)

	result, err := service.Run(ctx, app.AnalysisRequest{
		Response:    cfg.Analysis.Response,
		Groups:      cfg.Input.Groups,
		Comparisons: cfg.ContrastSpecs(),
		Alpha:       cfg.Analysis.Alpha,
		Method:      cfg.CorrectionMethod(),
	})
	if err != nil {
		return err
	}

	if cfg.Output.SaveArtifacts {
		bars := charts.BuildBars(result.Summaries, result.Dataset.Groups())
		opts := render.DefaultRenderOptions()
		opts.Title = "Average " + cfg.Analysis.Response + " by group with 95% CI"
		opts.YLabel = "Average " + cfg.Analysis.Response + " per image"
		chartSVG := render.RenderSVG(result.Chart, bars, result.Layout, opts)

		writer := artifacts.NewWriter(cfg.Output.Dir, logger)
		outDir, err := writer.Save(result.Run, result.Layout, chartSVG, cfg)
		if err != nil {
			return err
		}
		logger.Info("artifacts written to %s", outDir)
	}

	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return errors.PersistenceError("failed to connect to database", err)
		}
		defer db.Close()

		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := repo.SaveRun(ctx, result.Run); err != nil {
			return err
		}
		logger.Info("run %s persisted", result.Run.ID.String())
	}

	return nil
}
