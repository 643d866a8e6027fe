package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

// planKeyPrefix namespaces plan keys inside a shared Redis instance.
const planKeyPrefix = "mealplan:"

// RedisConfig holds connection settings for the Redis plan store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Database int
	// PlanTTL bounds how long a stored plan lives. Zero keeps plans
	// until overwritten or deleted.
	PlanTTL time.Duration
}

// RedisPlanStore persists plans as JSON values in Redis.
type RedisPlanStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPlanStore connects to Redis and verifies the connection with a
// ping before returning the store.
func NewRedisPlanStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisPlanStore, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisPlanStore{
		client: client,
		ttl:    cfg.PlanTTL,
		logger: logger.Named("redis-plan-store"),
	}, nil
}

// NewRedisPlanStoreWithClient wraps an existing client, used by tests.
func NewRedisPlanStoreWithClient(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisPlanStore {
	return &RedisPlanStore{client: client, ttl: ttl, logger: logger.Named("redis-plan-store")}
}

// SavePlan stores the plan as a JSON blob under the user's key.
func (s *RedisPlanStore) SavePlan(ctx context.Context, userID string, plan meal.WeeklyPlan) error {
	if userID == "" {
		return apperrors.NewBadRequestError("user id must not be empty")
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := s.client.Set(ctx, planKey(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store plan for %s: %w", userID, err)
	}
	s.logger.Debug("plan stored", zap.String("user_id", userID), zap.Int("bytes", len(payload)))
	return nil
}

// GetPlan loads and decodes the user's plan.
func (s *RedisPlanStore) GetPlan(ctx context.Context, userID string) (meal.WeeklyPlan, error) {
	payload, err := s.client.Get(ctx, planKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return meal.WeeklyPlan{}, apperrors.NewPlanNotFoundError(userID)
	}
	if err != nil {
		return meal.WeeklyPlan{}, fmt.Errorf("load plan for %s: %w", userID, err)
	}
	var plan meal.WeeklyPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return meal.WeeklyPlan{}, fmt.Errorf("decode plan for %s: %w", userID, err)
	}
	return plan, nil
}

// DeletePlan removes the user's plan. Deleting an absent plan is a no-op.
func (s *RedisPlanStore) DeletePlan(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, planKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete plan for %s: %w", userID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisPlanStore) Close() error {
	return s.client.Close()
}

func planKey(userID string) string {
	return planKeyPrefix + userID
}
