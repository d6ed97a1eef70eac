// Package main is the entry point for the app2 demo service.
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
	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/observability"
	"github.com/muhammad21236/limbic-devops-assessment/internal/service"
)

func main() {
	_ = godotenv.Load()

	port := flag.Int("port", getEnvIntOrDefault("PORT", 5000), "Listen port")
	logLevel := flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LogConfig{Level: *logLevel, Format: "json"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := service.New(service.Options{
		Name:        "app2",
		Environment: getEnvOrDefault("APP_ENV", "development"),
		Logger:      logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start("", *port)
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
