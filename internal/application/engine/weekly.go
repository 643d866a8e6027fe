package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

// Diversity limits for weekly plans: a dish name appears at most once per
// day and at most twice per week, with a bounded number of re-draws
// before the catalog is consulted for a conflict-free pick.
const (
	maxDishUsesPerWeek = 2
	maxRedrawsPerSlot  = 3
)

// weeklySlots splits the daily target across the three main meals.
var weeklySlots = []struct {
	mealType meal.MealType
	share    float64
}{
	{meal.MealTypeBreakfast, 0.25},
	{meal.MealTypeLunch, 0.40},
	{meal.MealTypeDinner, 0.35},
}

// GenerateWeeklyPlan builds seven day plans sequentially, Monday first.
// Each slot receives its share of the daily target and the same
// preferences and allergies; dish diversity is enforced across the week.
func (s *Service) GenerateWeeklyPlan(ctx context.Context, dailyTarget meal.Target, preferences, allergies []string, useLLM bool) (meal.WeeklyPlan, error) {
	if !dailyTarget.Valid() {
		return meal.WeeklyPlan{}, apperrors.NewBadRequestError("nutrition target components must be non-negative")
	}

	weekCounts := make(map[string]int)
	days := make([]meal.DayPlan, 0, len(meal.WeekDays))

	for _, day := range meal.WeekDays {
		dayNames := make(map[string]bool)
		plan := meal.DayPlan{Day: day}

		for _, slot := range weeklySlots {
			req := meal.Request{
				MealType:    slot.mealType,
				Day:         day,
				Target:      dailyTarget.Scale(slot.share),
				Preferences: preferences,
				Allergies:   allergies,
				UseLLM:      useLLM,
			}
			m, err := s.suggestDiverse(ctx, req, dayNames, weekCounts)
			if err != nil {
				return meal.WeeklyPlan{}, err
			}
			recordDishUses(m, dayNames, weekCounts)

			switch slot.mealType {
			case meal.MealTypeBreakfast:
				plan.Breakfast = m
			case meal.MealTypeLunch:
				plan.Lunch = m
			case meal.MealTypeDinner:
				plan.Dinner = m
			}
		}

		days = append(days, plan)
	}

	return s.aggregator.ReconcileWeek(meal.WeeklyPlan{Days: days}), nil
}

// ReplaceMeal swaps out one slot of an existing plan. The replacement is
// drawn under the same diversity rules, treating the rest of the plan as
// already-used dishes, and day and week totals are re-aggregated.
func (s *Service) ReplaceMeal(ctx context.Context, plan meal.WeeklyPlan, day meal.Day, mealType meal.MealType, target meal.Target, useLLM bool) (meal.WeeklyPlan, meal.Meal, error) {
	parsedDay, err := meal.ParseDay(string(day))
	if err != nil {
		return meal.WeeklyPlan{}, meal.Meal{}, apperrors.NewBadRequestError(err.Error())
	}
	parsedType, err := meal.ParseMealType(string(mealType))
	if err != nil {
		return meal.WeeklyPlan{}, meal.Meal{}, apperrors.NewBadRequestError(err.Error())
	}
	if parsedType == meal.MealTypeSnack {
		return meal.WeeklyPlan{}, meal.Meal{}, apperrors.NewBadRequestError("weekly plans hold breakfast, lunch and dinner slots only")
	}
	if !target.Valid() {
		return meal.WeeklyPlan{}, meal.Meal{}, apperrors.NewBadRequestError("nutrition target components must be non-negative")
	}

	dayIdx := -1
	for i, d := range plan.Days {
		if d.Day == parsedDay {
			dayIdx = i
			break
		}
	}
	if dayIdx < 0 {
		return meal.WeeklyPlan{}, meal.Meal{}, apperrors.NewBadRequestError("plan has no entry for " + string(parsedDay))
	}

	// Usage maps exclude the slot being replaced, so the old dish may be
	// drawn again if it still fits.
	dayNames := make(map[string]bool)
	weekCounts := make(map[string]int)
	for i, d := range plan.Days {
		for _, slot := range weeklySlots {
			if i == dayIdx && slot.mealType == parsedType {
				continue
			}
			m := slotMeal(d, slot.mealType)
			for _, name := range m.DishNames() {
				key := dishKey(name)
				weekCounts[key]++
				if i == dayIdx {
					dayNames[key] = true
				}
			}
		}
	}

	req := meal.Request{
		MealType: parsedType,
		Day:      parsedDay,
		Target:   target,
		UseLLM:   useLLM,
	}
	replacement, err := s.suggestDiverse(ctx, req, dayNames, weekCounts)
	if err != nil {
		return meal.WeeklyPlan{}, meal.Meal{}, err
	}

	days := make([]meal.DayPlan, len(plan.Days))
	copy(days, plan.Days)
	switch parsedType {
	case meal.MealTypeBreakfast:
		days[dayIdx].Breakfast = replacement
	case meal.MealTypeLunch:
		days[dayIdx].Lunch = replacement
	case meal.MealTypeDinner:
		days[dayIdx].Dinner = replacement
	}

	updated := s.aggregator.ReconcileWeek(meal.WeeklyPlan{Days: days})
	return updated, replacement, nil
}

// suggestDiverse draws a meal for the slot and re-draws when a dish name
// collides with the day or exceeds its weekly allowance. Fallback draws
// are deterministic, so a colliding fallback meal skips straight to the
// catalog candidates; if nothing conflict-free exists, the last draw is
// kept rather than failing the plan.
func (s *Service) suggestDiverse(ctx context.Context, req meal.Request, dayNames map[string]bool, weekCounts map[string]int) (meal.Meal, error) {
	var last meal.Meal
	for attempt := 0; attempt <= maxRedrawsPerSlot; attempt++ {
		m, err := s.SuggestMeal(ctx, req)
		if err != nil {
			return meal.Meal{}, err
		}
		last = m
		if mealIsDiverse(m, dayNames, weekCounts) {
			return m, nil
		}
		if m.Source == meal.SourceFallback {
			break
		}
	}

	catalogReq := req
	catalogReq.UseLLM = false
	conflicts := func(name string) bool {
		key := dishKey(name)
		return dayNames[key] || weekCounts[key] >= maxDishUsesPerWeek
	}
	for _, dish := range s.fallback.Candidates(catalogReq, 0) {
		if conflicts(dish.Name) {
			continue
		}
		return s.composeFallback(catalogReq, dish, conflicts), nil
	}

	s.logger.Warn("no conflict-free dish available for slot, keeping last draw",
		zap.String("meal_type", string(req.MealType)),
		zap.String("day", string(req.Day)),
		zap.Strings("dishes", last.DishNames()))
	return last, nil
}

func mealIsDiverse(m meal.Meal, dayNames map[string]bool, weekCounts map[string]int) bool {
	for _, name := range m.DishNames() {
		key := dishKey(name)
		if dayNames[key] || weekCounts[key] >= maxDishUsesPerWeek {
			return false
		}
	}
	return true
}

func recordDishUses(m meal.Meal, dayNames map[string]bool, weekCounts map[string]int) {
	for _, name := range m.DishNames() {
		key := dishKey(name)
		dayNames[key] = true
		weekCounts[key]++
	}
}

func dishKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func slotMeal(d meal.DayPlan, mt meal.MealType) meal.Meal {
	switch mt {
	case meal.MealTypeBreakfast:
		return d.Breakfast
	case meal.MealTypeLunch:
		return d.Lunch
	default:
		return d.Dinner
	}
}
