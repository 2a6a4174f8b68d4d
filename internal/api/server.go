package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/config"
	"github.com/snarg/moodscribe/internal/metrics"
	"github.com/snarg/moodscribe/internal/render"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// ServerOptions wires the handlers' dependencies.
type ServerOptions struct {
	Config    *config.Config
	Runner    Runner
	Stats     StatsSource
	Checks    map[string]Pinger
	Backends  []metrics.Backend
	Version   string
	StartTime time.Time
	Log       zerolog.Logger
}

func NewServer(opts ServerOptions) *Server {
	cfg := opts.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(opts.Log))
	r.Use(CORSWithOrigins(cfg.CORSOrigins))
	r.Use(metrics.InstrumentHandler)

	r.Handle("/metrics", promhttp.Handler())

	health := NewHealthHandler(opts.Stats, opts.Checks, opts.Backends, opts.Version, opts.StartTime)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.ServeHTTP)
		NewCatalogHandler().Routes(r)
		NewTranscribeHandler(opts.Runner, render.Mode(cfg.DefaultMode), cfg.MaxUploadBytes, opts.Log).Routes(r)
	})

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: opts.Log,
	}
}

// Handler returns the root router.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
