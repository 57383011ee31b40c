// Package api is the HTTP surface: route wiring, lifecycle, and the
// per-route pipeline handlers.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/moodmora/edge/pkg/envelope"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	return c
}

type Server struct {
	cfg     ServerConfig
	handler *Handler
	server  *http.Server
	logger  *slog.Logger

	draining atomic.Bool
}

func NewServer(cfg ServerConfig, handler *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg.withDefaults(), handler: handler, logger: logger}
}

func (s *Server) Name() string { return "http" }

func (s *Server) ReadyFields() map[string]any {
	return map[string]any{"addr": s.cfg.Addr}
}

// Routes builds the mux. Exposed so tests can drive the full routing
// table through httptest.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handler.Health)
	mux.HandleFunc("POST /v1/improve", s.guard(s.handler.Improve))
	mux.HandleFunc("POST /v1/reply", s.guard(s.handler.Reply))
	mux.HandleFunc("/", s.notFound)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           s.Routes(),
	}
	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http_server_error", "error", err.Error())
		}
	}()
	return nil
}

func (s *Server) Stop() error {
	s.draining.Store(true)
	if s.server != nil {
		_ = s.server.Close()
	}
	return nil
}

func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.draining.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.handler.write(w, http.StatusNotFound,
		envelope.Err(envelope.NewRequestID(), CodeNotFound, "Route not found",
			map[string]any{"path": r.URL.Path}, nil))
}
