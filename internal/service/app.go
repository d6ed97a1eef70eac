// Package service implements the demonstration application services that
// sit behind the ingress. Both apps expose the same informational and
// health endpoints; app1 additionally fans out to app2 over the internal
// network through the resilient client.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/client"
	"github.com/muhammad21236/limbic-devops-assessment/internal/report"
)

// ginModeOnce ensures gin.SetMode is only called once.
var ginModeOnce sync.Once

// Options configures an App.
type Options struct {
	Name        string
	Version     string
	Environment string
	Logger      *zap.Logger

	// Client and Downstream enable the fan-out endpoint: when both are
	// set the app exposes /call-<downstream>.
	Client     *client.Client
	Downstream string

	// Metrics, when set, enables a /metrics endpoint serving the given
	// registry. The caller bridges the collectors it wants scraped.
	Metrics *prometheus.Registry
}

// App is one demo application service.
type App struct {
	name        string
	version     string
	environment string
	started     time.Time
	engine      *gin.Engine
	httpServer  *http.Server
	logger      *zap.Logger
	client      *client.Client
	downstream  string
	metrics     *prometheus.Registry
}

// New creates a demo application service.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.Environment == "" {
		opts.Environment = "development"
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	a := &App{
		name:        opts.Name,
		version:     opts.Version,
		environment: opts.Environment,
		started:     time.Now(),
		engine:      gin.New(),
		logger:      opts.Logger,
		client:      opts.Client,
		downstream:  opts.Downstream,
		metrics:     opts.Metrics,
	}

	a.engine.Use(gin.Recovery(), a.requestMiddleware())
	a.registerRoutes()

	return a
}

// requestMiddleware stamps service identity headers, logs the request with
// its forwarding origin, and records the handling time.
func (a *App) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		writer := &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		writer.Header().Set("X-Service", a.name)
		writer.Header().Set("X-Version", a.version)
		c.Writer = writer

		c.Next()

		forwardedBy := c.Request.Header.Get("X-Forwarded-By")
		if forwardedBy == "" {
			forwardedBy = "unknown"
		}
		a.logger.Info("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("forwarded_by", forwardedBy))
	}
}

// timingWriter injects the X-Response-Time header just before the response
// status is committed.
type timingWriter struct {
	gin.ResponseWriter
	start time.Time
	wrote bool
}

func (w *timingWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		w.Header().Set("X-Response-Time", fmt.Sprintf("%.3fs", time.Since(w.start).Seconds()))
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// registerRoutes wires the application endpoints.
func (a *App) registerRoutes() {
	a.engine.GET("/", a.handleHome)
	a.engine.GET("/status", a.handleStatus)
	a.engine.GET("/health", a.handleHealth)
	a.engine.GET("/info", a.handleInfo)
	a.engine.GET("/ping", a.handlePing)

	if a.client != nil && a.downstream != "" {
		a.engine.GET("/call-"+a.downstream, a.handleCallDownstream)
	}
	if a.metrics != nil {
		a.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})))
	}

	a.engine.NoRoute(a.handleNotFound)
}

// endpoints lists the routes this app serves, for the home and 404 bodies.
func (a *App) endpoints() []string {
	eps := []string{"GET /", "GET /status", "GET /health", "GET /info", "GET /ping"}
	if a.client != nil && a.downstream != "" {
		eps = append(eps, "GET /call-"+a.downstream)
	}
	if a.metrics != nil {
		eps = append(eps, "GET /metrics")
	}
	return eps
}

func (a *App) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   a.name,
		"version":   a.version,
		"status":    "running",
		"timestamp": time.Now().UTC(),
		"endpoints": a.endpoints(),
	})
}

func (a *App) handleStatus(c *gin.Context) {
	uptime := time.Since(a.started)

	c.JSON(http.StatusOK, gin.H{
		"service":       a.name,
		"status":        "ok",
		"timestamp":     time.Now().UTC(),
		"uptimeSeconds": uptime.Round(10 * time.Millisecond).Seconds(),
		"uptime":        formatUptime(uptime),
		"version":       a.version,
		"environment":   a.environment,
	})
}

func (a *App) handleHealth(c *gin.Context) {
	uptime := time.Since(a.started)

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   a.name,
		"version":   a.version,
		"timestamp": time.Now().UTC(),
		"uptime": gin.H{
			"seconds":   uptime.Round(10 * time.Millisecond).Seconds(),
			"formatted": formatUptime(uptime),
			"startedAt": a.started.UTC(),
		},
		"environment": a.environment,
		"checks": gin.H{
			"apiResponsive":     true,
			"environmentLoaded": true,
		},
	})
}

// handleInfo reports static service metadata: where the service sits in the
// deployment and what it offers.
func (a *App) handleInfo(c *gin.Context) {
	features := []string{
		"RESTful API",
		"JSON responses",
		"Health monitoring",
	}
	if a.client != nil && a.downstream != "" {
		features = append(features, "Service-to-service communication")
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     a.name,
		"version":     a.version,
		"description": "Go API service for the Limbic Capital DevOps assessment",
		"author":      "Limbic Capital",
		"environment": a.environment,
		"goVersion":   runtime.Version(),
		"architecture": gin.H{
			"layer":    "Application Layer",
			"runtime":  "Docker",
			"network":  "internal_net (Docker bridge)",
			"exposure": "Cloudflare Tunnel with Zero Trust Access",
		},
		"features": features,
	})
}

func (a *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"service":   a.name,
		"timestamp": time.Now().UTC(),
	})
}

// handleCallDownstream invokes the downstream backend with the default
// timeout and renders the classified outcome. Failures are data, not
// errors: the caller gets the error kind and diagnostics verbatim.
func (a *App) handleCallDownstream(c *gin.Context) {
	outcome, err := a.client.Call(
		c.Request.Context(),
		a.downstream,
		"/status",
		client.DefaultTimeout,
		client.WithHeader("X-Forwarded-By", a.name),
	)
	if err != nil {
		if errors.Is(err, client.ErrUnknownBackend) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "call failed: " + err.Error()})
		return
	}

	body, status := report.RenderCall(outcome)
	c.JSON(status, body)
}

func (a *App) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":              "Not Found",
		"message":            fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path),
		"timestamp":          time.Now().UTC(),
		"availableEndpoints": a.endpoints(),
	})
}

// formatUptime renders a duration as "1d 2h 3m 4s", omitting leading zero
// units.
func formatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))

	return strings.Join(parts, " ")
}

// Handler returns the underlying HTTP handler, used by tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Start starts the app's HTTP server and blocks until it stops.
func (a *App) Start(address string, port int) error {
	addr := fmt.Sprintf("%s:%d", address, port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.logger.Info("service starting",
		zap.String("service", a.name),
		zap.String("address", addr))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("service %s failed: %w", a.name, err)
	}
	return nil
}

// Shutdown gracefully stops the app.
func (a *App) Shutdown(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	a.logger.Info("service shutting down", zap.String("service", a.name))
	return a.httpServer.Shutdown(ctx)
}
