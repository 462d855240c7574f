// Package api serves the courtwatch read and subscription API over plain
// HTTP JSON: the live board and queues, per-case history and statistics,
// device registration, watchlist management, and the websocket delta feed.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/db"
	"github.com/courtwatch/courtwatch/runtime"
	"github.com/courtwatch/courtwatch/scraper/queue"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "api")

var _ runtime.Service = (*Service)(nil)

// boardReader exposes the scraper's in-memory view of the latest tick. The
// second return reports whether the view is still fresh; on false the api
// degrades to the durable snapshot.
type boardReader interface {
	CurrentCourts() ([]*board.Court, bool)
	Queues() (queue.Queues, bool)
}

// Config parameters for setting up the api service.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
	Database       db.Database
	Board          boardReader
	// WSHandler, when set, is mounted at GET /ws for delta subscriptions.
	WSHandler http.Handler
}

// Service is the courtwatch HTTP API server.
type Service struct {
	cfg          *Config
	ctx          context.Context
	cancel       context.CancelFunc
	router       *mux.Router
	server       *http.Server
	startFailure error
}

// NewService builds the api server and registers its routes. The router is
// ready before Start so tests can drive it without a listener.
func NewService(ctx context.Context, cfg *Config) *Service {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Service) registerRoutes() {
	r := s.router
	r.HandleFunc("/api/v1/courts", s.Courts).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/queues", s.Queues).Methods(http.MethodGet)
	// Case numbers carry slashes ("SCA/1/2024"), so the variable must span
	// path segments up to the fixed suffix.
	r.HandleFunc("/api/v1/cases/{caseNumber:.+}/history", s.CaseHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/cases/{caseNumber:.+}/statistics", s.CaseStatistics).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/devices", s.RegisterDevice).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/devices/{deviceId}/watchlists", s.DeviceWatchlists).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/devices/{deviceId}/notifications", s.DeviceNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/watchlists", s.CreateWatchlist).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/watchlists/{id}", s.DeleteWatchlist).Methods(http.MethodDelete)
	if s.cfg.WSHandler != nil {
		r.Handle("/ws", s.cfg.WSHandler).Methods(http.MethodGet)
	}
}

// Start the http api server.
func (s *Service) Start() {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.corsMiddleware(s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("address", addr).Info("Starting API server")
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start API server")
			s.startFailure = err
		}
	}()
}

// Stop the api server with a graceful shutdown.
func (s *Service) Stop() error {
	defer s.cancel()
	if s.server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(s.ctx, 2*time.Second)
		defer shutdownCancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn("Existing connections terminated")
			} else {
				log.WithError(err).Error("Failed to gracefully shut down server")
			}
		}
	}
	return nil
}

// Status of the api server. Returns an error if the listener failed.
func (s *Service) Status() error {
	return s.startFailure
}

func (s *Service) corsMiddleware(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodPost, http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
		MaxAge:           600,
		AllowedHeaders:   []string{"*"},
	})
	return c.Handler(h)
}
