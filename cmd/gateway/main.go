// Package main is the entry point for the ingress gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
	"github.com/muhammad21236/limbic-devops-assessment/internal/config"
	"github.com/muhammad21236/limbic-devops-assessment/internal/health"
	"github.com/muhammad21236/limbic-devops-assessment/internal/ingress"
	"github.com/muhammad21236/limbic-devops-assessment/internal/observability"
	"github.com/muhammad21236/limbic-devops-assessment/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)

	registry, router, aggregator := buildCore(cfg, logger)
	metricsRegistry := initMetrics()

	srv := server.New(&server.Config{
		Address:      cfg.Server.Address,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}, router, registry, aggregator, metricsRegistry, logger)

	run(srv, logger)
}

// parseFlags parses command line flags, with .env and environment defaults.
func parseFlags() cliFlags {
	_ = godotenv.Load()

	configPath := flag.String("config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("GATEWAY_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("GATEWAY_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("gateway version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) *zap.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// loadAndValidateConfig loads the configuration and exits on validation
// errors. Validation warnings are logged and do not prevent startup.
func loadAndValidateConfig(path string, logger *zap.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", path), zap.Error(err))
	}

	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		logger.Fatal("configuration invalid", zap.Error(err))
	}
	for _, warning := range validator.Warnings() {
		logger.Warn("configuration warning", zap.String("warning", warning))
	}

	logger.Info("configuration loaded",
		zap.String("path", path),
		zap.Int("backends", len(cfg.Backends)),
		zap.Int("ingress_rules", len(cfg.Ingress.Rules)))

	return cfg
}

// buildCore builds the registry, router, and health aggregator from
// configuration.
func buildCore(cfg *config.Config, logger *zap.Logger) (*backend.Registry, *ingress.Router, *health.Aggregator) {
	backends := make([]backend.Backend, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		backends = append(backends, backend.Backend{Name: b.Name, Address: b.Address, Port: b.Port})
	}

	registry, err := backend.NewRegistry(backends)
	if err != nil {
		logger.Fatal("failed to build backend registry", zap.Error(err))
	}

	rules := make([]ingress.Rule, 0, len(cfg.Ingress.Rules))
	for _, r := range cfg.Ingress.Rules {
		rules = append(rules, ingress.Rule{
			Hostname: r.Hostname,
			Backend:  r.Backend,
			Terminal: r.IsTerminal(),
		})
	}

	router, err := ingress.NewRouter(rules, registry, logger)
	if err != nil {
		logger.Fatal("failed to build ingress router", zap.Error(err))
	}

	aggregator := health.NewAggregator(
		buildProbes(cfg.Health.Probes),
		logger.Named("health"),
		health.WithProbeTimeout(cfg.Health.ProbeTimeout.Duration()),
	)

	return registry, router, aggregator
}

// buildProbes maps probe configurations to probe implementations.
func buildProbes(probeConfigs []config.ProbeConfig) []health.Probe {
	probes := make([]health.Probe, 0, len(probeConfigs))
	for _, p := range probeConfigs {
		switch p.Type {
		case config.ProbeTypeHTTP:
			probes = append(probes, health.HTTPProbe(p.Name, p.URL, p.Critical))
		case config.ProbeTypeTCP:
			probes = append(probes, health.TCPProbe(p.Name, p.Address, p.Critical))
		case config.ProbeTypeDocker:
			probes = append(probes, health.DockerProbe(p.Name, p.Critical))
		}
	}
	return probes
}

// initMetrics creates the metrics registry and bridges the collectors.
func initMetrics() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	health.GetMetrics().MustRegister(registry)
	return registry
}

// run starts the server and blocks until a termination signal arrives.
func run(srv *server.Server, logger *zap.Logger) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
