package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mediagrab/internal/config"
	"mediagrab/internal/extract"
	"mediagrab/internal/fetch"
	"mediagrab/internal/monitoring"
	"mediagrab/internal/storage"
)

// Server holds the dependencies for the HTTP server. The redis and
// postgres stores may be nil when their backends are not configured; every
// handler tolerates that.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	extractor  *extract.Extractor
	fetcher    *fetch.Client
	cache      *storage.RedisStore
	history    *storage.PostgresStore
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, ex *extract.Extractor, fc *fetch.Client, cache *storage.RedisStore, history *storage.PostgresStore, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:    cfg,
		extractor: ex,
		fetcher:   fc,
		cache:     cache,
		history:   history,
		metrics:   m,
		logger:    l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the proxy route streams large media bodies.
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
