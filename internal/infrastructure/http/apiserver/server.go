// Package apiserver provides the JSON API HTTP server for the meal
// suggestion engine.
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/infrastructure/config"
	"github.com/nutriplan/mealengine/internal/infrastructure/http/handlers"
	"github.com/nutriplan/mealengine/internal/infrastructure/http/middleware"
	"github.com/nutriplan/mealengine/internal/infrastructure/monitoring"
	"github.com/nutriplan/mealengine/internal/ports/inbound"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
)

// requestTimeout bounds a full API request. Plan generation runs many
// engine calls, so it sits above the engine's own per-call deadline.
const requestTimeout = 120 * time.Second

// APIServer serves the meal plan JSON API.
type APIServer struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	service inbound.MealPlannerService
	store   outbound.PlanStore
	prober  outbound.Prober
	metrics *monitoring.Metrics
}

// NewAPIServer creates a new API server instance.
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	service inbound.MealPlannerService,
	store outbound.PlanStore,
	prober outbound.Prober,
	metrics *monitoring.Metrics,
) *APIServer {
	server := &APIServer{
		config:  cfg,
		logger:  log,
		service: service,
		store:   store,
		prober:  prober,
		metrics: metrics,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server
}

// setupRoutes configures the API routes.
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.JSONOnly())

	r.Get("/health", s.handleHealthCheck)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	h := handlers.NewMealPlanHandlers(s.service, s.store, s.logger)
	r.Route("/api/meal-plan", func(r chi.Router) {
		r.Post("/generate", h.GeneratePlan)
		r.Post("/replace-meal", h.ReplaceMeal)
		r.Get("/{user_id}", h.GetPlan)
	})

	return r
}

// Start starts the HTTP server.
func (s *APIServer) Start() error {
	s.logger.Info("Starting meal plan API server",
		zap.String("address", s.server.Addr),
	)
	return s.server.ListenAndServe()
}

// Server returns the underlying HTTP server instance.
func (s *APIServer) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down meal plan API server...")
	return s.server.Shutdown(ctx)
}

// handleHealthCheck reports service liveness plus the current LLM
// connectivity verdict.
func (s *APIServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	verdict := s.prober.Verdict(r.Context())
	s.metrics.ObserveProbeVerdict(string(verdict.Diagnosis))

	response := map[string]interface{}{
		"status":    "healthy",
		"service":   s.config.App.Name,
		"version":   s.config.App.Version,
		"timestamp": time.Now().Unix(),
		"llm":       verdict,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to encode health response", zap.Error(err))
	}
}
