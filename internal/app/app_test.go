package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:            "development",
		DBDriver:          "sqlite",
		DBConnection:      "file:" + filepath.Join(t.TempDir(), "app.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite",
		MatchInterval:     time.Minute,
		MatchParallelism:  2,
		MatchLeaseTTL:     30 * time.Second,
		MatchMaxGroupSize: 2,
		MatchOnEnqueue:    true,
	}
}

func TestNew_LocalDefaults(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.Nil(t, a.Redis)
	assert.NotNil(t, a.Scheduler)

	ctx := context.Background()
	category, err := a.CategoryService.Create(ctx, "gym", "Gym", false)
	require.NoError(t, err)

	result, err := a.MatchingEngine.RunPass(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Empty(t, result.Matches)
}

func TestNew_RedisLease(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	require.NotNil(t, a.Redis)
	assert.NoError(t, a.Redis.Ping(context.Background()).Err())
}

func TestNew_BadRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisURL = "not a url"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
