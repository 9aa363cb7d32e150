// Package api provides the HTTP server for hostconf.
// It uses Echo framework to serve provisioning documents by MAC address and
// a WebSocket stream of the request log.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"evalgo.org/hostconf/internal/config"
	"evalgo.org/hostconf/internal/logging"
	"evalgo.org/hostconf/internal/metrics"
	"evalgo.org/hostconf/internal/projection"
	"evalgo.org/hostconf/internal/provision"
)

// Server represents the hostconf HTTP server.
type Server struct {
	echo     *echo.Echo
	service  *provision.Service
	config   *config.Config
	logger   *logging.Logger
	metrics  *metrics.Registry
	hub      *Hub // WebSocket hub for the request log stream
	upgrader websocket.Upgrader
}

// New creates a new API server instance. A nil logger discards output and a
// nil registry gets a fresh one.
func New(cfg *config.Config, svc *provision.Service, logger *logging.Logger, reg *metrics.Registry) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if reg == nil {
		reg = metrics.New()
	}
	logger = logger.WithComponent("api")

	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	// Set custom error handler
	e.HTTPErrorHandler = HTTPErrorHandler

	// Create WebSocket hub
	hub := NewHub(logger.Logger, func(n int) { reg.LogClients.Set(float64(n)) })

	stats := svc.Stats()
	reg.SetInventory(stats.Hosts, stats.Interfaces, stats.Conflicts)

	// Create server instance
	server := &Server{
		echo:     e,
		service:  svc,
		config:   cfg,
		logger:   logger,
		metrics:  reg,
		hub:      hub,
		upgrader: newUpgrader(cfg.Security.AllowedOrigins),
	}

	// Start WebSocket hub in background
	go hub.Run()

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.echo.Use(s.requestLogger())

	// Recover middleware
	s.echo.Use(middleware.Recover())

	// Security headers middleware
	s.echo.Use(SecurityHeaders)

	// CORS middleware
	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}
}

// setupRoutes configures provisioning routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// Rendered documents
	for _, kind := range projection.Kinds() {
		s.echo.GET("/"+kind.String()+"/:mac", s.handleDocument(kind), ValidateMAC)
	}

	// Caller-supplied unattend template. Always registered so a disabled
	// server answers 404 instead of 405.
	s.echo.PUT("/"+projection.KindUnattend.String()+"/:mac", s.handleCustomUnattend, s.requireCustomTemplates, ValidateTemplateContentType, ValidateMAC)

	// Raw fields
	for _, name := range provision.RawFields {
		s.echo.GET("/"+name+"/:mac", s.handleField(name), ValidateMAC)
	}

	// Inventory listing
	s.echo.GET("/hosts", s.listHosts)

	// Request log
	s.echo.GET("/log", s.handleLog)

	// Metrics
	if s.config.Metrics.Enabled {
		s.echo.GET(s.config.Metrics.Path, echo.WrapHandler(s.metrics.Handler()))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	stats := s.service.Stats()
	s.logger.Info("starting hostconf server",
		"address", addr,
		"tls", s.config.Server.TLSEnabled,
		"hosts", stats.Hosts,
		"interfaces", stats.Interfaces,
		"templates", s.service.TemplateSource(),
		"debug", s.config.Server.Debug,
	)

	// Configure server timeouts
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	// Start server
	var err error
	if s.config.Server.TLSEnabled {
		err = s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	} else {
		err = s.echo.Start(addr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down hostconf server")

	// Close log stream clients first, hijacked connections are not
	// tracked by the HTTP server
	s.hub.Stop()

	// Shutdown Echo server
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
