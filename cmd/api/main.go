// Command api serves the analysis pipeline as a JSON HTTP API.
package main

import (
	"flag"
	"log"

	"imgquant/adapters/fiji"
	"imgquant/adapters/render"
	"imgquant/app"
	"imgquant/internal"
	"imgquant/internal/config"
	"imgquant/ui"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to analysis config")
	flag.Parse()

	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	source := fiji.NewReader(cfg.Input.CSVPath)
	service := app.NewAnalysisService(source, render.NewChartBuilder(), logger)

	server := ui.NewServer(service, cfg, logger)
	if err := server.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
