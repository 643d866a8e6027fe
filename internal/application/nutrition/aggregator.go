// Package nutrition provides the aggregation layer that keeps meal, day,
// and week totals consistent with their component dishes.
package nutrition

import (
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// Tolerance is the floating-point slack allowed between a displayed total
// and the recomputed sum before the aggregator rewrites it.
const Tolerance = 1e-6

// Aggregator reconciles nutrition totals. It is idempotent and stateless
// beyond its logger.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger.Named("nutrition-aggregator")}
}

// Sum returns the component-wise sum over all dishes. Optional macros are
// carried only when every dish reports them.
func (a *Aggregator) Sum(dishes []meal.Dish) meal.Nutrition {
	if len(dishes) == 0 {
		return meal.Nutrition{}
	}
	total := dishes[0].Nutrition
	for _, d := range dishes[1:] {
		total = total.Add(d.Nutrition)
	}
	return total
}

// ReconcileMeal returns a copy of the meal whose nutrition equals the sum
// of its dishes. The historical bug was surfacing only the first dish's
// nutrition as the meal total; any drift beyond the tolerance is repaired
// in place and logged.
func (a *Aggregator) ReconcileMeal(m meal.Meal) meal.Meal {
	sum := a.Sum(m.Dishes)
	if !m.Nutrition.Equals(sum, Tolerance) {
		a.logger.Warn("meal nutrition drifted from dish sum, repairing",
			zap.String("meal_type", string(m.Type)),
			zap.Int("dishes", len(m.Dishes)),
			zap.Float64("displayed_calories", m.Nutrition.Calories),
			zap.Float64("summed_calories", sum.Calories),
		)
	}
	m.Nutrition = sum
	return m
}

// ReconcileDay reconciles each meal and the day total.
func (a *Aggregator) ReconcileDay(p meal.DayPlan) meal.DayPlan {
	p.Breakfast = a.ReconcileMeal(p.Breakfast)
	p.Lunch = a.ReconcileMeal(p.Lunch)
	p.Dinner = a.ReconcileMeal(p.Dinner)
	p.Nutrition = p.Breakfast.Nutrition.Add(p.Lunch.Nutrition).Add(p.Dinner.Nutrition)
	return p
}

// ReconcileWeek reconciles every day and the weekly total.
func (a *Aggregator) ReconcileWeek(w meal.WeeklyPlan) meal.WeeklyPlan {
	days := make([]meal.DayPlan, len(w.Days))
	var total meal.Nutrition
	for i, day := range w.Days {
		days[i] = a.ReconcileDay(day)
		total = total.Add(days[i].Nutrition)
	}
	w.Days = days
	w.TotalNutrition = total
	return w
}
