package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

// newTestRedisStore connects to the local test Redis; the suite is
// skipped when no server is reachable.
func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisPlanStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	client.FlushDB(context.Background())
	return NewRedisPlanStoreWithClient(client, ttl, zap.NewNop())
}

func TestRedisStoreSaveAndGet(t *testing.T) {
	s := newTestRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))

	got, err := s.GetPlan(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Phở Gà", got.Days[0].Breakfast.Dishes[0].Name)
}

func TestRedisStoreGetMissing(t *testing.T) {
	s := newTestRedisStore(t, 0)

	_, err := s.GetPlan(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePlanNotFound, apperrors.GetCode(err))
}

func TestRedisStoreSaveEmptyUserID(t *testing.T) {
	s := newTestRedisStore(t, 0)

	err := s.SavePlan(context.Background(), "", samplePlan())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.GetCode(err))
}

func TestRedisStoreDelete(t *testing.T) {
	s := newTestRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))
	require.NoError(t, s.DeletePlan(ctx, "user-1"))

	_, err := s.GetPlan(ctx, "user-1")
	assert.Equal(t, apperrors.CodePlanNotFound, apperrors.GetCode(err))

	assert.NoError(t, s.DeletePlan(ctx, "user-1"))
}

func TestRedisStorePlanTTL(t *testing.T) {
	s := newTestRedisStore(t, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, "user-1", samplePlan()))

	time.Sleep(250 * time.Millisecond)
	_, err := s.GetPlan(ctx, "user-1")
	assert.Equal(t, apperrors.CodePlanNotFound, apperrors.GetCode(err))
}
