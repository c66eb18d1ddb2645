package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/keyscope/pkg/domain"
	"github.com/umputun/keyscope/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/status_provider.go -pkg mocks -skip-ensure -fmt goimports . StatusProvider
//go:generate moq -out mocks/exclusion_provider.go -pkg mocks -skip-ensure -fmt goimports . ExclusionProvider

// Server exposes run progress over HTTP while an extraction is in flight
type Server struct {
	config     ConfigProvider
	status     StatusProvider
	exclusions ExclusionProvider
	metrics    http.Handler
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// StatusProvider reports run progress and per-provider outcomes
type StatusProvider interface {
	Progress() scheduler.Progress
	Stats() []domain.ProviderStats
}

// ExclusionProvider exposes the run-wide exclusion list
type ExclusionProvider interface {
	Current() []string
	Size() int
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance. The metrics handler may be nil,
// the /metrics route is then not registered.
func New(cfg ConfigProvider, status StatusProvider, exclusions ExclusionProvider, metrics http.Handler, version string, debug bool) *Server {
	s := &Server{
		config:     cfg,
		status:     status,
		exclusions: exclusions,
		metrics:    metrics,
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting status server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("keyscope", "umputun", s.version))
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
		r.HandleFunc("GET /exclusions", s.exclusionsHandler)
	})

	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}
}

// statusResponse is the /api/v1/status payload
type statusResponse struct {
	Status     string                 `json:"status"`
	Version    string                 `json:"version"`
	Time       time.Time              `json:"time"`
	Progress   scheduler.Progress     `json:"progress"`
	Providers  []domain.ProviderStats `json:"providers"`
	Exclusions int                    `json:"exclusions"`
}

// exclusionsResponse is the /api/v1/exclusions payload
type exclusionsResponse struct {
	Count    int      `json:"count"`
	Keywords []string `json:"keywords"`
}

// statusHandler returns run progress with per-provider counters
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:     "ok",
		Version:    s.version,
		Time:       time.Now().UTC(),
		Progress:   s.status.Progress(),
		Providers:  s.status.Stats(),
		Exclusions: s.exclusions.Size(),
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// exclusionsHandler returns the current high-frequency keyword list
func (s *Server) exclusionsHandler(w http.ResponseWriter, r *http.Request) {
	keywords := s.exclusions.Current()
	RenderJSON(w, r, http.StatusOK, exclusionsResponse{Count: len(keywords), Keywords: keywords})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
