// Package engine provides the meal suggestion orchestrator: it chooses
// between the LLM pipeline and the static fallback, normalizes nutrition,
// and guarantees that every call returns a well-formed meal.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/application/nutrition"
	"github.com/nutriplan/mealengine/internal/domain/meal"
	"github.com/nutriplan/mealengine/internal/infrastructure/llm/prompt"
	"github.com/nutriplan/mealengine/internal/infrastructure/llm/repair"
	"github.com/nutriplan/mealengine/internal/infrastructure/monitoring"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

const (
	// suggestTimeout bounds one full SuggestMeal call; past it the
	// fallback path is forced.
	suggestTimeout = 90 * time.Second

	// rateLimitWindow and rateLimitThreshold govern the short circuit:
	// more than two 429s inside the window bypasses the LLM for the
	// cooldown period.
	rateLimitWindow    = 60 * time.Second
	rateLimitCooldown  = 60 * time.Second
	rateLimitThreshold = 2

	// fallbackCalorieTolerance is the relative calorie shortfall a single
	// library dish may leave before a side dish is added to the meal.
	fallbackCalorieTolerance = 0.15
)

// defaultIngredient backfills LLM dishes that arrive without ingredients,
// mirroring the salvage stage's degenerate shape.
var defaultIngredient = meal.Ingredient{Name: "Nguyên liệu chính", Amount: "100g"}

// Config holds engine configuration
type Config struct {
	// FallbackOnly bypasses the LLM entirely.
	FallbackOnly bool
}

// Service implements the meal planner engine.
type Service struct {
	cfg        Config
	client     outbound.CompletionClient
	prompts    *prompt.Builder
	parser     *repair.Parser
	fallback   outbound.DishSource
	prober     outbound.Prober
	aggregator *nutrition.Aggregator
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	mu                sync.Mutex
	rateLimitHits     []time.Time
	shortCircuitUntil time.Time
}

// NewService creates a new suggestion engine. All collaborators are
// explicit; the engine holds no module-level singletons.
func NewService(
	cfg Config,
	client outbound.CompletionClient,
	fallbackSource outbound.DishSource,
	prober outbound.Prober,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Service {
	namedLogger := logger.Named("meal-engine")
	return &Service{
		cfg:        cfg,
		client:     client,
		prompts:    prompt.NewBuilder(),
		parser:     repair.NewParser(namedLogger),
		fallback:   fallbackSource,
		prober:     prober,
		aggregator: nutrition.NewAggregator(namedLogger),
		metrics:    metrics,
		logger:     namedLogger,
	}
}

// SuggestMeal produces one meal for the request. Only invalid input can
// surface as an error; every upstream failure degrades to the fallback
// library, so the caller always receives a non-empty meal.
func (s *Service) SuggestMeal(ctx context.Context, req meal.Request) (meal.Meal, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSuggestionDuration(time.Since(start))
	}()

	mealType, err := meal.ParseMealType(string(req.MealType))
	if err != nil {
		return meal.Meal{}, apperrors.NewBadRequestError(err.Error())
	}
	req.MealType = mealType

	if !req.Target.Valid() {
		return meal.Meal{}, apperrors.NewBadRequestError("nutrition target components must be non-negative")
	}

	callCtx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	if s.llmAllowed(callCtx, req) {
		if m, ok := s.tryLLM(callCtx, req); ok {
			s.metrics.ObserveMeal(string(m.Source))
			return m, nil
		}
	}

	m := s.fallbackMeal(req)
	s.metrics.ObserveFallback()
	s.metrics.ObserveMeal(string(m.Source))
	return m, nil
}

// llmAllowed gates the LLM path on request intent, configuration, the
// rate-limit short circuit, and the current health verdict.
func (s *Service) llmAllowed(ctx context.Context, req meal.Request) bool {
	if !req.UseLLM || s.cfg.FallbackOnly {
		return false
	}
	if s.shortCircuited() {
		s.logger.Debug("rate-limit short circuit active, using fallback")
		return false
	}
	verdict := s.prober.Verdict(ctx)
	if !verdict.UsableForLLM() {
		s.logger.Debug("health verdict blocks LLM path",
			zap.String("diagnosis", string(verdict.Diagnosis)))
		return false
	}
	return true
}

// tryLLM runs prompt → complete → repair. A false return means the caller
// must take the fallback path.
func (s *Service) tryLLM(ctx context.Context, req meal.Request) (meal.Meal, bool) {
	promptText := s.prompts.Build(req)

	raw, err := s.client.Complete(ctx, promptText, outbound.CompletionOptions{})
	if err != nil {
		s.handleUpstreamError(err)
		return meal.Meal{}, false
	}
	s.metrics.ObserveLLMRequest("ok")

	result := s.parser.ParseDetailed(raw)
	s.metrics.ObserveRepair(string(result.Stage))

	dishes := s.sanitizeDishes(result.Dishes, req)
	if len(dishes) == 0 {
		s.logger.Warn("repair yielded no usable dish, using fallback",
			zap.String("stage", string(result.Stage)),
			zap.Int("raw_length", len(raw)),
		)
		return meal.Meal{}, false
	}

	m := meal.Meal{
		Type:   req.MealType,
		Dishes: dishes,
		Source: meal.SourceLLM,
	}
	return s.aggregator.ReconcileMeal(m), true
}

// handleUpstreamError maps a completion failure onto verdict updates and
// the rate-limit window. No failure propagates to the caller.
func (s *Service) handleUpstreamError(err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		s.metrics.ObserveLLMRequest("unknown")
		s.logger.Warn("completion failed", zap.Error(err))
		return
	}

	s.metrics.ObserveLLMRequest(strings.ToLower(string(appErr.Code)))
	s.logger.Warn("completion failed", zap.String("code", string(appErr.Code)), zap.Error(err))

	switch appErr.Code {
	case apperrors.CodeUpstreamAuth:
		s.prober.Record(meal.HealthVerdict{
			Reachable: true,
			AuthOK:    false,
			Diagnosis: meal.DiagnosisUnauthorized,
		})
	case apperrors.CodeUpstreamForbidden:
		s.prober.Record(meal.HealthVerdict{
			Reachable: false,
			Diagnosis: meal.DiagnosisRegionBlocked,
		})
	case apperrors.CodeUpstreamRateLimited:
		s.noteRateLimit()
	case apperrors.CodeUpstreamTimeout, apperrors.CodeUpstreamUnavailable:
		// Hard transport failure: drop the cached verdict so the next
		// consult re-probes the provider.
		s.prober.Invalidate()
	}
}

// noteRateLimit records a 429 and trips the short circuit when the
// threshold is exceeded inside the window.
func (s *Service) noteRateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)
	kept := s.rateLimitHits[:0]
	for _, t := range s.rateLimitHits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.rateLimitHits = append(kept, now)

	if len(s.rateLimitHits) > rateLimitThreshold {
		s.shortCircuitUntil = now.Add(rateLimitCooldown)
		s.logger.Warn("rate limited repeatedly, short-circuiting to fallback",
			zap.Time("until", s.shortCircuitUntil))
	}
}

func (s *Service) shortCircuited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Before(s.shortCircuitUntil)
}

// sanitizeDishes enforces the engine's output invariants on repaired
// dishes: non-empty name and ingredients, non-negative macros, and no
// allergy-listed ingredient.
func (s *Service) sanitizeDishes(dishes []meal.Dish, req meal.Request) []meal.Dish {
	out := make([]meal.Dish, 0, len(dishes))
	for _, d := range dishes {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		if containsAnyAllergen(d, req.Allergies) {
			s.logger.Warn("dropping dish containing allergen",
				zap.String("dish", d.Name),
				zap.Strings("allergies", req.Allergies))
			continue
		}
		if len(d.Ingredients) == 0 {
			d.Ingredients = []meal.Ingredient{defaultIngredient}
		}
		d.Nutrition = clampNutrition(d.Nutrition)
		out = append(out, d)
	}
	return out
}

// fallbackMeal builds a meal from the static library. The library always
// returns a dish, which is what backs the engine's no-failure contract.
func (s *Service) fallbackMeal(req meal.Request) meal.Meal {
	return s.composeFallback(req, s.fallback.Select(req), nil)
}

// composeFallback assembles a fallback meal around the primary dish.
// Library portions stretch only so far; when the primary alone leaves too
// large a calorie deficit, a side dish sized to the remainder joins the
// meal. Side candidates rejected by the exclude callback are skipped.
func (s *Service) composeFallback(req meal.Request, primary meal.Dish, exclude func(name string) bool) meal.Meal {
	dishes := []meal.Dish{primary}

	deficit := req.Target.Calories - primary.Nutrition.Calories
	if req.Target.Calories > 0 && deficit > req.Target.Calories*fallbackCalorieTolerance {
		sideReq := req
		sideReq.Target = req.Target.Scale(deficit / req.Target.Calories)
		for _, side := range s.fallback.Candidates(sideReq, 0) {
			if dishKey(side.Name) == dishKey(primary.Name) {
				continue
			}
			if exclude != nil && exclude(side.Name) {
				continue
			}
			dishes = append(dishes, side)
			break
		}
	}

	m := meal.Meal{
		Type:   req.MealType,
		Dishes: dishes,
		Source: meal.SourceFallback,
	}
	return s.aggregator.ReconcileMeal(m)
}

func containsAnyAllergen(d meal.Dish, allergies []string) bool {
	for _, a := range allergies {
		if d.ContainsAllergen(a) {
			return true
		}
	}
	return false
}

func clampNutrition(n meal.Nutrition) meal.Nutrition {
	if n.Calories < 0 {
		n.Calories = 0
	}
	if n.Protein < 0 {
		n.Protein = 0
	}
	if n.Fat < 0 {
		n.Fat = 0
	}
	if n.Carbs < 0 {
		n.Carbs = 0
	}
	return n
}
