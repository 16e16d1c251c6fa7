package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"photo-vote-bot/internal/domain"
)

// Server отдаёт /metrics, /healthz и сводку последнего цикла.
type Server struct {
	Router chi.Router
	log    zerolog.Logger
	srv    *http.Server

	lastReport atomic.Pointer[domain.CycleReport]
}

// NewServer создаёт HTTP сервер.
func NewServer(logger zerolog.Logger) *Server {
	s := &Server{log: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	s.Router = r
	return s
}

// SetLastReport запоминает итог последнего цикла для /status.
func (s *Server) SetLastReport(report domain.CycleReport) {
	s.lastReport.Store(&report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := s.lastReport.Load()
	if report == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.log.Error().Err(err).Msg("status: не удалось сериализовать отчёт")
	}
}

// Start запускает http.Server.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("HTTP сервер запущен")
	return s.srv.ListenAndServe()
}

// Shutdown позволяет корректно завершить работу.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
