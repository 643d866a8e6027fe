// Package inbound defines the service interfaces exposed to the HTTP layer.
package inbound

import (
	"context"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// MealPlannerService is the engine's inbound contract. Every method returns
// a well-formed result; only invalid input surfaces as an error.
type MealPlannerService interface {
	SuggestMeal(ctx context.Context, req meal.Request) (meal.Meal, error)
	ReplaceMeal(ctx context.Context, plan meal.WeeklyPlan, day meal.Day, mealType meal.MealType, target meal.Target, useLLM bool) (meal.WeeklyPlan, meal.Meal, error)
	GenerateWeeklyPlan(ctx context.Context, dailyTarget meal.Target, preferences []string, allergies []string, useLLM bool) (meal.WeeklyPlan, error)
}
