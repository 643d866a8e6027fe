package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

func samplePlan() meal.WeeklyPlan {
	return meal.WeeklyPlan{
		Days: []meal.DayPlan{
			{
				Day: meal.Monday,
				Breakfast: meal.Meal{
					Type:   meal.MealTypeBreakfast,
					Source: meal.SourceFallback,
					Dishes: []meal.Dish{{
						Name:      "Phở Gà",
						Nutrition: meal.Nutrition{Calories: 450, Protein: 27, Fat: 18, Carbs: 45},
					}},
				},
			},
		},
	}
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryPlanStore()
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))

	got, err := s.GetPlan(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Phở Gà", got.Days[0].Breakfast.Dishes[0].Name)
}

func TestMemoryStoreSaveReplaces(t *testing.T) {
	s := NewMemoryPlanStore()
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))

	updated := samplePlan()
	updated.Days[0].Breakfast.Dishes[0].Name = "Bánh Mì Trứng"
	require.NoError(t, s.SavePlan(ctx, "user-1", updated))

	got, err := s.GetPlan(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Bánh Mì Trứng", got.Days[0].Breakfast.Dishes[0].Name)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryPlanStore()

	_, err := s.GetPlan(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePlanNotFound, apperrors.GetCode(err))
}

func TestMemoryStoreSaveEmptyUserID(t *testing.T) {
	s := NewMemoryPlanStore()

	err := s.SavePlan(context.Background(), "", samplePlan())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.GetCode(err))
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryPlanStore()
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))
	require.NoError(t, s.DeletePlan(ctx, "user-1"))

	_, err := s.GetPlan(ctx, "user-1")
	assert.Equal(t, apperrors.CodePlanNotFound, apperrors.GetCode(err))

	// Absent plan deletes are a no-op.
	assert.NoError(t, s.DeletePlan(ctx, "user-1"))
}

func TestMemoryStoreConcurrentUsers(t *testing.T) {
	gofakeit.Seed(11)
	s := NewMemoryPlanStore()
	ctx := context.Background()

	ids := make([]string, 32)
	for i := range ids {
		ids[i] = gofakeit.UUID()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			assert.NoError(t, s.SavePlan(ctx, userID, samplePlan()))
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		got, err := s.GetPlan(ctx, id)
		require.NoError(t, err)
		assert.Len(t, got.Days, 1)
	}
}
