// Package outbound defines the interfaces the engine consumes from
// infrastructure collaborators.
package outbound

import (
	"context"
	"time"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// CompletionOptions tune a single chat-completion call. A nil Temperature
// leaves the client's default in force; zero requests deterministic
// sampling.
type CompletionOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// CompletionClient issues chat-completion requests to the LLM provider.
// It returns the raw assistant text and never interprets the body.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// DishSource supplies deterministic dishes when the LLM path is unusable.
type DishSource interface {
	Select(req meal.Request) meal.Dish
	Candidates(req meal.Request, n int) []meal.Dish
}

// Prober detects whether the provider is reachable from the current network.
// Record pins an externally observed verdict, typically after the engine
// saw a hard upstream failure mid-call.
type Prober interface {
	Probe(ctx context.Context) meal.HealthVerdict
	Verdict(ctx context.Context) meal.HealthVerdict
	Record(v meal.HealthVerdict)
	Invalidate()
}

// PlanStore persists weekly plans keyed by user ID. Persistence semantics
// live outside the core; the engine only hands finished plans over.
type PlanStore interface {
	SavePlan(ctx context.Context, userID string, plan meal.WeeklyPlan) error
	GetPlan(ctx context.Context, userID string) (meal.WeeklyPlan, error)
	DeletePlan(ctx context.Context, userID string) error
}

// ProbeCache stores health verdicts with a TTL.
type ProbeCache interface {
	Get() (meal.HealthVerdict, bool)
	Set(v meal.HealthVerdict, ttl time.Duration)
	Clear()
}
