// Package storage persists weekly plans keyed by user ID. The memory
// store backs tests and single-node deployments; the Redis store is the
// shared-backend option.
package storage

import (
	"context"
	"sync"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

// MemoryPlanStore keeps plans in a process-local map. Safe for
// concurrent use.
type MemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]meal.WeeklyPlan
}

// NewMemoryPlanStore creates an empty in-memory plan store.
func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{plans: make(map[string]meal.WeeklyPlan)}
}

// SavePlan stores or replaces the plan for the user.
func (s *MemoryPlanStore) SavePlan(_ context.Context, userID string, plan meal.WeeklyPlan) error {
	if userID == "" {
		return apperrors.NewBadRequestError("user id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = plan
	return nil
}

// GetPlan returns the stored plan or a not-found error.
func (s *MemoryPlanStore) GetPlan(_ context.Context, userID string) (meal.WeeklyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[userID]
	if !ok {
		return meal.WeeklyPlan{}, apperrors.NewPlanNotFoundError(userID)
	}
	return plan, nil
}

// DeletePlan removes the user's plan. Deleting an absent plan is a no-op.
func (s *MemoryPlanStore) DeletePlan(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, userID)
	return nil
}
