// Package ui serves the dashboard's HTTP API: one upload endpoint plus
// stateless view endpoints recomputed per request from the shaped data.
package ui

import (
	"log"

	"github.com/gin-gonic/gin"

	"maudash/internal/config"
	"maudash/internal/session"
)

// Server is the web server for the metrics dashboard API.
type Server struct {
	router *gin.Engine
	config *config.Config
	store  *session.Store
}

// NewServer creates a server wired to an upload store.
func NewServer(cfg *config.Config, store *session.Store) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router: gin.Default(),
		config: cfg,
		store:  store,
	}
	s.setupRoutes()
	return s
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.config.Server.Port
	log.Printf("[Server] Listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/help", s.handleHelp)

	api := s.router.Group("/api")
	api.POST("/uploads", s.handleUpload)
	api.GET("/uploads/:id", s.handleGetUpload)

	dataset := api.Group("/uploads/:id/datasets/:dataset")
	dataset.GET("/periods", s.handlePeriods)
	dataset.GET("/countries", s.handleCountries)
	dataset.GET("/map", s.handleMap)
	dataset.GET("/top", s.handleTop)
	dataset.GET("/records", s.handleRecords)
	dataset.GET("/trend", s.handleTrend)
	dataset.GET("/trend/slopes", s.handleTrendSlopes)
	dataset.GET("/aggregates", s.handleAggregates)
	dataset.GET("/summary", s.handleSummary)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
