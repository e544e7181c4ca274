// Package ui exposes the analysis pipeline over HTTP.
package ui

import (
	"net/http"

	"imgquant/app"
	"imgquant/internal"
	"imgquant/internal/config"

	"github.com/gin-gonic/gin"
)

// Server is the JSON API server for running analyses
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	cfg     *config.Config
	log     *internal.Logger
}

// NewServer creates the API server and registers its routes
func NewServer(service *app.AnalysisService, cfg *config.Config, logger *internal.Logger) *Server {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
		cfg:     cfg,
		log:     logger.WithComponent("api"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api/v1")
	{
		api.POST("/analyses", s.handleAnalyze)
	}
}

// Run starts the HTTP server on the configured port
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
