// Package main is the entry point for the app1 demo service. App1 calls
// app2 over the internal network through the resilient client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
	"github.com/muhammad21236/limbic-devops-assessment/internal/client"
	"github.com/muhammad21236/limbic-devops-assessment/internal/config"
	"github.com/muhammad21236/limbic-devops-assessment/internal/observability"
	"github.com/muhammad21236/limbic-devops-assessment/internal/service"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	port := flag.Int("port", getEnvIntOrDefault("PORT", 3000), "Listen port")
	logLevel := flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LogConfig{Level: *logLevel, Format: "json"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	backends := make([]backend.Backend, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		backends = append(backends, backend.Backend{Name: b.Name, Address: b.Address, Port: b.Port})
	}
	registry, err := backend.NewRegistry(backends)
	if err != nil {
		logger.Fatal("failed to build backend registry", zap.Error(err))
	}

	metricsRegistry := prometheus.NewRegistry()
	client.GetMetrics().MustRegister(metricsRegistry)

	app := service.New(service.Options{
		Name:        "app1",
		Environment: getEnvOrDefault("APP_ENV", "development"),
		Logger:      logger,
		Client:      client.New(registry, logger.Named("client")),
		Downstream:  "app2",
		Metrics:     metricsRegistry,
	})

	run(app, *port, logger)
}

// run starts the app and blocks until a termination signal arrives.
func run(app *service.App, port int, logger *zap.Logger) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start("", port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("service error", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return def
}
