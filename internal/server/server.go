// Package server provides the ingress HTTP server: host-based dispatch to
// backends plus health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
	"github.com/muhammad21236/limbic-devops-assessment/internal/health"
	"github.com/muhammad21236/limbic-devops-assessment/internal/ingress"
	"github.com/muhammad21236/limbic-devops-assessment/internal/report"
)

// ginModeOnce ensures gin.SetMode is only called once.
var ginModeOnce sync.Once

// Config holds configuration for the ingress server.
type Config struct {
	Address      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Server is the ingress server. It resolves the inbound hostname through
// the router and forwards the request to the matched backend, or answers
// the fixed "no route" response.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	router     *ingress.Router
	registry   *backend.Registry
	aggregator *health.Aggregator
	proxies    map[string]*httputil.ReverseProxy
	logger     *zap.Logger
	config     *Config
}

// New creates an ingress server.
func New(
	cfg *Config,
	router *ingress.Router,
	registry *backend.Registry,
	aggregator *health.Aggregator,
	metricsRegistry *prometheus.Registry,
	logger *zap.Logger,
) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		engine:     gin.New(),
		router:     router,
		registry:   registry,
		aggregator: aggregator,
		proxies:    make(map[string]*httputil.ReverseProxy),
		logger:     logger,
		config:     cfg,
	}

	s.engine.Use(gin.Recovery())
	s.buildProxies()
	s.registerRoutes(metricsRegistry)

	return s
}

// buildProxies creates one reverse proxy per registered backend.
func (s *Server) buildProxies() {
	for _, name := range s.registry.Names() {
		b, _ := s.registry.Lookup(name)
		target := &url.URL{Scheme: "http", Host: b.HostPort()}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = s.proxyErrorHandler(b)
		s.proxies[name] = proxy
	}
}

// proxyErrorHandler renders a dispatch failure with the backend identity so
// the caller does not need gateway logs to see where the request died.
func (s *Server) proxyErrorHandler(b backend.Backend) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Error("backend dispatch failed",
			zap.String("backend", b.Name),
			zap.String("address", b.HostPort()),
			zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, `{"error":"backend unreachable","backend":%q,"address":%q}`,
			b.Name, b.HostPort())
	}
}

// registerRoutes wires the health, metrics, and dispatch handlers.
func (s *Server) registerRoutes(metricsRegistry *prometheus.Registry) {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/livez", s.handleLiveness)

	if metricsRegistry != nil {
		s.engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})))
	}

	// Everything not claimed above is dispatched by hostname.
	s.engine.NoRoute(s.handleDispatch)
}

// handleHealth evaluates all probes and renders the composite report.
func (s *Server) handleHealth(c *gin.Context) {
	reportBody, status := report.RenderHealth(s.aggregator.Evaluate(c.Request.Context()))
	c.JSON(status, reportBody)
}

// handleLiveness answers a plain liveness ping.
func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDispatch resolves the request hostname and forwards to the matched
// backend. A terminal match renders the fixed "no route" response.
func (s *Server) handleDispatch(c *gin.Context) {
	hostname := ingress.Normalize(c.Request.Host)

	target, err := s.router.Resolve(hostname)
	if err != nil {
		if errors.Is(err, ingress.ErrNoRoute) {
			body, status := report.RenderNoRoute(hostname)
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	proxy, ok := s.proxies[target.Name]
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no proxy for backend " + target.Name})
		return
	}

	s.logger.Debug("dispatching request",
		zap.String("hostname", hostname),
		zap.String("backend", target.Name),
		zap.String("path", c.Request.URL.Path))

	c.Request.Header.Set("X-Forwarded-By", "ingress-gateway")
	proxy.ServeHTTP(c.Writer, c.Request)
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("ingress server starting", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ingress server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("ingress server shutting down")
	return s.httpServer.Shutdown(ctx)
}
