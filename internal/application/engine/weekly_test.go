package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/application/nutrition"
	"github.com/nutriplan/mealengine/internal/domain/meal"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

func dailyTarget() meal.Target {
	return meal.Target{Calories: 2000, Protein: 120, Fat: 70, Carbs: 220}
}

func fallbackOnlyService() *Service {
	return newTestService(Config{FallbackOnly: true}, &stubClient{script: []stubTurn{{text: "[]"}}}, healthyProber())
}

func TestGenerateWeeklyPlanShape(t *testing.T) {
	svc := fallbackOnlyService()

	plan, err := svc.GenerateWeeklyPlan(context.Background(), dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	require.Len(t, plan.Days, 7)
	for i, day := range plan.Days {
		assert.Equal(t, meal.WeekDays[i], day.Day)
		for _, m := range day.Meals() {
			assert.NotEmpty(t, m.Dishes, "day %s meal %s has no dishes", day.Day, m.Type)
			assert.Equal(t, meal.SourceFallback, m.Source)
		}
		assert.Equal(t, meal.MealTypeBreakfast, day.Breakfast.Type)
		assert.Equal(t, meal.MealTypeLunch, day.Lunch.Type)
		assert.Equal(t, meal.MealTypeDinner, day.Dinner.Type)
	}
}

func TestGenerateWeeklyPlanDiversity(t *testing.T) {
	svc := fallbackOnlyService()

	plan, err := svc.GenerateWeeklyPlan(context.Background(), dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	weekCounts := make(map[string]int)
	for _, day := range plan.Days {
		dayNames := make(map[string]bool)
		for _, m := range day.Meals() {
			for _, name := range m.DishNames() {
				key := dishKey(name)
				assert.False(t, dayNames[key], "dish %q repeats within %s", name, day.Day)
				dayNames[key] = true
				weekCounts[key]++
			}
		}
	}
	for name, count := range weekCounts {
		assert.LessOrEqual(t, count, maxDishUsesPerWeek, "dish %q used %d times", name, count)
	}
}

func TestGenerateWeeklyPlanNutritionConsistent(t *testing.T) {
	svc := fallbackOnlyService()
	target := dailyTarget()

	plan, err := svc.GenerateWeeklyPlan(context.Background(), target, nil, nil, false)
	require.NoError(t, err)

	agg := nutrition.NewAggregator(zap.NewNop())
	var weekCalories float64
	for _, day := range plan.Days {
		var daySum meal.Nutrition
		for _, m := range day.Meals() {
			dishSum := agg.Sum(m.Dishes)
			assert.True(t, m.Nutrition.Equals(dishSum, nutrition.Tolerance),
				"meal %s/%s nutrition drifted from its dishes", day.Day, m.Type)
			daySum = daySum.Add(m.Nutrition)
		}
		assert.True(t, day.Nutrition.Equals(daySum, nutrition.Tolerance),
			"day %s nutrition drifted from its meals", day.Day)
		weekCalories += day.Nutrition.Calories
	}

	assert.InDelta(t, plan.TotalNutrition.Calories, weekCalories, nutrition.Tolerance*7)

	weekTarget := target.Calories * 7
	assert.InDelta(t, weekTarget, plan.TotalNutrition.Calories, weekTarget*0.10)
}

func TestGenerateWeeklyPlanMeetsTargetAcrossIntakes(t *testing.T) {
	// High intakes need multi-dish meals; a single scaled catalog portion
	// cannot stretch to them.
	for _, calories := range []float64{1400, 2000, 2800} {
		t.Run(fmt.Sprintf("%.0fkcal", calories), func(t *testing.T) {
			svc := fallbackOnlyService()
			target := dailyTarget().Scale(calories / dailyTarget().Calories)

			plan, err := svc.GenerateWeeklyPlan(context.Background(), target, nil, nil, false)
			require.NoError(t, err)

			weekTarget := calories * 7
			assert.InDelta(t, weekTarget, plan.TotalNutrition.Calories, weekTarget*0.10,
				"weekly calories drifted more than 10%% from target at %.0f kcal/day", calories)
		})
	}
}

func TestGenerateWeeklyPlanInvalidTarget(t *testing.T) {
	svc := fallbackOnlyService()

	_, err := svc.GenerateWeeklyPlan(context.Background(), meal.Target{Calories: -100}, nil, nil, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.GetCode(err))
}

func TestGenerateWeeklyPlanHonorsAllergies(t *testing.T) {
	svc := fallbackOnlyService()

	plan, err := svc.GenerateWeeklyPlan(context.Background(), dailyTarget(), nil, []string{"tôm"}, false)
	require.NoError(t, err)

	for _, day := range plan.Days {
		for _, m := range day.Meals() {
			for _, d := range m.Dishes {
				assert.False(t, d.ContainsAllergen("tôm"), "dish %q contains allergen", d.Name)
			}
		}
	}
}

func TestReplaceMealSwapsSlot(t *testing.T) {
	svc := fallbackOnlyService()
	ctx := context.Background()

	plan, err := svc.GenerateWeeklyPlan(ctx, dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	slotTarget := dailyTarget().Scale(0.40)
	updated, replacement, err := svc.ReplaceMeal(ctx, plan, meal.Tuesday, meal.MealTypeLunch, slotTarget, false)
	require.NoError(t, err)

	assert.Equal(t, meal.MealTypeLunch, replacement.Type)
	assert.NotEmpty(t, replacement.Dishes)
	assert.Equal(t, replacement.DishNames(), updated.Days[1].Lunch.DishNames())

	// The rest of the plan is untouched.
	assert.Equal(t, plan.Days[1].Breakfast.DishNames(), updated.Days[1].Breakfast.DishNames())
	assert.Equal(t, plan.Days[0].Lunch.DishNames(), updated.Days[0].Lunch.DishNames())

	// Day and week totals are re-aggregated around the new slot.
	var daySum meal.Nutrition
	for _, m := range updated.Days[1].Meals() {
		daySum = daySum.Add(m.Nutrition)
	}
	assert.True(t, updated.Days[1].Nutrition.Equals(daySum, nutrition.Tolerance))
}

func TestReplaceMealKeepsDiversity(t *testing.T) {
	svc := fallbackOnlyService()
	ctx := context.Background()

	plan, err := svc.GenerateWeeklyPlan(ctx, dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	updated, replacement, err := svc.ReplaceMeal(ctx, plan, meal.Wednesday, meal.MealTypeDinner, dailyTarget().Scale(0.35), false)
	require.NoError(t, err)

	dayNames := make(map[string]bool)
	for _, m := range updated.Days[2].Meals() {
		for _, name := range m.DishNames() {
			key := dishKey(name)
			assert.False(t, dayNames[key], "dish %q repeats within the day after replacement", name)
			dayNames[key] = true
		}
	}
	assert.NotEmpty(t, replacement.Dishes)
}

func TestReplaceMealParsesDayAndTypeAliases(t *testing.T) {
	svc := fallbackOnlyService()
	ctx := context.Background()

	plan, err := svc.GenerateWeeklyPlan(ctx, dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	updated, _, err := svc.ReplaceMeal(ctx, plan, "fri", "bữa tối", dailyTarget().Scale(0.35), false)
	require.NoError(t, err)
	assert.Equal(t, meal.Friday, updated.Days[4].Day)
}

func TestReplaceMealRejectsBadInput(t *testing.T) {
	svc := fallbackOnlyService()
	ctx := context.Background()

	plan, err := svc.GenerateWeeklyPlan(ctx, dailyTarget(), nil, nil, false)
	require.NoError(t, err)

	cases := []struct {
		name     string
		day      meal.Day
		mealType meal.MealType
	}{
		{"unknown day", "someday", meal.MealTypeLunch},
		{"unknown meal type", meal.Monday, "brunch"},
		{"snack slot", meal.Monday, meal.MealTypeSnack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.ReplaceMeal(ctx, plan, tc.day, tc.mealType, dailyTarget().Scale(0.40), false)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeBadRequest, apperrors.GetCode(err))
		})
	}
}

func TestReplaceMealMissingDay(t *testing.T) {
	svc := fallbackOnlyService()

	partial := meal.WeeklyPlan{Days: []meal.DayPlan{{Day: meal.Monday}}}
	_, _, err := svc.ReplaceMeal(context.Background(), partial, meal.Sunday, meal.MealTypeLunch, dailyTarget().Scale(0.40), false)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.GetCode(err))
}
