// Package server exposes a planner over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/piwi3910/boxplanner/internal/planner"
)

// maxUploadBytes caps multipart uploads (floor plans, price lists).
const maxUploadBytes = 32 << 20

type Options struct {
	ProjectName     string
	AllowedOrigin   string
	AnalysisTimeout time.Duration
	// PresetPath is the user preset store; empty lists built-in presets only.
	PresetPath string
	// Seed drives the scenario comparison; 0 picks a random layout per request.
	Seed   int64
	Logger zerolog.Logger
}

type Server struct {
	planner         *planner.Planner
	log             zerolog.Logger
	projectName     string
	allowedOrigin   string
	analysisTimeout time.Duration
	presetPath      string
	seed            int64
}

func New(p *planner.Planner, opts Options) *Server {
	if opts.ProjectName == "" {
		opts.ProjectName = "Untitled"
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 60 * time.Second
	}
	return &Server{
		planner:         p,
		log:             opts.Logger,
		projectName:     opts.ProjectName,
		allowedOrigin:   opts.AllowedOrigin,
		analysisTimeout: opts.AnalysisTimeout,
		presetPath:      opts.PresetPath,
		seed:            opts.Seed,
	}
}

// Handler builds the gin engine with all routes and middleware.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes
	router.Use(requestLogger(s.log))
	router.Use(recovery(s.log))
	router.Use(corsMiddleware(s.allowedOrigin))

	api := router.Group("/api")
	api.GET("/health", s.health)
	api.GET("/state", s.getState)
	api.PUT("/config", s.putConfig)
	api.POST("/plan", s.generatePlan)
	api.PUT("/mode", s.putMode)

	overrides := api.Group("/overrides")
	overrides.PUT("", s.putOverrides)
	overrides.DELETE("", s.clearOverrides)
	overrides.PUT("/:field", s.putOverride)
	overrides.POST("/copy-auto", s.copyAutoToManual)

	api.POST("/costs/manual", s.recalculateManual)
	api.POST("/cashflow", s.runCashFlow)
	api.POST("/analysis", s.analyze)
	api.POST("/advice", s.advise)
	api.GET("/compare", s.compare)

	api.POST("/prices/import", s.importPrices)
	api.POST("/prices/reset", s.resetPrices)
	api.GET("/presets", s.listPresets)
	api.POST("/presets/:id/apply", s.applyPreset)

	api.GET("/report.pdf", s.reportPDF)
	api.GET("/report.xlsx", s.reportXLSX)
	api.GET("/labels.pdf", s.labelsPDF)

	return router
}
