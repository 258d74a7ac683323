// Package server implements the HTTP surface: status, delivery attempt interactions
// and subscription management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/pushscope/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/database.go -pkg mocks -skip-ensure -fmt goimports . Database
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	db        Database
	scheduler Scheduler
	version   string
	debug     bool
	now       func() time.Time

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Database interface for server operations
type Database interface {
	GetAttempt(ctx context.Context, id string) (*domain.DeliveryAttempt, error)
	SaveInteraction(ctx context.Context, a *domain.DeliveryAttempt) error
	GetSubscription(ctx context.Context, id int64) (*domain.Subscription, error)
	SaveSubscription(ctx context.Context, sub *domain.Subscription) error
	SubscriptionAttempts(ctx context.Context, subscriptionID int64, limit int) ([]*domain.DeliveryAttempt, error)
	CountItems(ctx context.Context) (int64, error)
	CountSubscriptions(ctx context.Context) (total, active int64, err error)
	CountByStatus(ctx context.Context) (map[domain.AttemptStatus]int64, error)
	GetSetting(ctx context.Context, key string) (string, error)
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	IngestItem(ctx context.Context, item *domain.Item) (created bool, attempts int, err error)
	DeactivateSubscription(ctx context.Context, id int64, reason string) (int64, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Stats is the pipeline summary reported by the status endpoint
type Stats struct {
	Items               int64                          `json:"items"`
	Subscriptions       int64                          `json:"subscriptions"`
	ActiveSubscriptions int64                          `json:"active_subscriptions"`
	Attempts            map[domain.AttemptStatus]int64 `json:"attempts"`
	LastIngest          string                         `json:"last_ingest,omitempty"`
	LastRescore         string                         `json:"last_rescore,omitempty"`
}

// New initializes a new server instance
func New(cfg ConfigProvider, db Database, scheduler Scheduler, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		db:        db,
		scheduler: scheduler,
		version:   version,
		debug:     debug,
		now:       time.Now,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("pushscope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("POST /items", s.ingestItemHandler)

		r.HandleFunc("GET /attempts/{id}", s.getAttemptHandler)
		r.HandleFunc("POST /attempts/{id}/{kind}", s.interactionHandler)

		r.HandleFunc("POST /subscriptions", s.saveSubscriptionHandler)
		r.HandleFunc("GET /subscriptions/{id}", s.getSubscriptionHandler)
		r.HandleFunc("GET /subscriptions/{id}/attempts", s.subscriptionAttemptsHandler)
		r.HandleFunc("POST /subscriptions/{id}/deactivate", s.deactivateHandler)
	})
}
