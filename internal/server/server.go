// Package server exposes the engine over HTTP. All routes are flat and
// stateless: bodies are opaque value bytes, envelopes are JSON.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BibekPathak/shark-db/internal/config"
	"github.com/BibekPathak/shark-db/internal/engine"
	"github.com/BibekPathak/shark-db/pkg/log"
)

type Server struct {
	engine *engine.Engine
	cfg    *config.Config
	http   *http.Server
	logger zerolog.Logger
}

func New(eng *engine.Engine, cfg *config.Config) *Server {
	s := &Server{
		engine: eng,
		cfg:    cfg,
		logger: log.HTTP,
	}
	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the gin handler chain. Exposed separately so tests can drive
// it with httptest without binding a port.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Metrics())
	if s.cfg.ReadOnly {
		r.Use(ReadOnly())
	}
	if s.cfg.AuthToken != "" {
		r.Use(AuthToken(s.cfg.AuthToken))
	}
	r.Use(WriteRateLimit(s.cfg.RateLimit, s.cfg.RateBurst))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/tables", s.handleListTables)
	r.POST("/tables", s.handleCreateTable)
	r.DELETE("/tables/:name", s.handleDropTable)
	r.POST("/tables/:name/rename", s.handleRenameTable)
	r.POST("/tables/:name/truncate", s.handleTruncateTable)
	r.POST("/tables/:name/dump", s.handleDumpTable)
	r.POST("/tables/:name/load", s.handleLoadTable)

	r.PUT("/kv/:table/:key", s.handlePut)
	r.GET("/kv/:table/:key", s.handleGet)
	r.HEAD("/kv/:table/:key", s.handleExists)
	r.DELETE("/kv/:table/:key", s.handleDelete)

	r.GET("/scan/:table", s.handleScan)
	r.GET("/prefix/:table", s.handlePrefixScan)
	r.GET("/stats/:table", s.handleStats)

	return r
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.cfg.HTTPAddr).Bool("readonly", s.cfg.ReadOnly).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
