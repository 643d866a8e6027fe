// Package main provides the entry point for the meal plan API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/application/engine"
	"github.com/nutriplan/mealengine/internal/infrastructure/config"
	"github.com/nutriplan/mealengine/internal/infrastructure/fallback"
	"github.com/nutriplan/mealengine/internal/infrastructure/http/apiserver"
	"github.com/nutriplan/mealengine/internal/infrastructure/llm"
	"github.com/nutriplan/mealengine/internal/infrastructure/llm/groq"
	"github.com/nutriplan/mealengine/internal/infrastructure/monitoring"
	"github.com/nutriplan/mealengine/internal/infrastructure/storage"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
	"github.com/nutriplan/mealengine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := groq.NewClient(groq.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	}, zapLogger)

	prober := llm.NewHealthProber(llm.ProbeConfig{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		VerdictTTL: cfg.VerdictTTL(),
	}, zapLogger)

	// Warm the health verdict so the first request and /health see a real
	// diagnosis instead of a lazy probe.
	go prober.Probe(ctx)

	metrics := monitoring.NewMetrics(zapLogger)
	library := fallback.NewLibrary(zapLogger)

	service := engine.NewService(
		engine.Config{FallbackOnly: cfg.Engine.FallbackOnly},
		client,
		library,
		prober,
		metrics,
		zapLogger,
	)

	var store outbound.PlanStore
	switch cfg.Storage.Backend {
	case "redis":
		redisStore, err := storage.NewRedisPlanStore(ctx, storage.RedisConfig{
			Host:     cfg.Storage.RedisHost,
			Port:     cfg.Storage.RedisPort,
			Password: cfg.Storage.RedisPassword,
			Database: cfg.Storage.RedisDatabase,
			PlanTTL:  cfg.Storage.PlanTTL,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close() //nolint:errcheck
		store = redisStore
	default:
		store = storage.NewMemoryPlanStore()
	}

	server := apiserver.NewAPIServer(cfg, zapLogger, service, store, prober, metrics)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("API server stopped", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down gracefully", zap.Error(err))
		os.Exit(1)
	}

	zapLogger.Info("Server stopped")
}
