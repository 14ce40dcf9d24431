package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dommgrand/notesapp/pkg/db/redis"
)

func mockRedisServer(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNew_Success(t *testing.T) {
	s := mockRedisServer(t)
	ctx := context.Background()

	client, err := redis.New(ctx, redis.Config{
		Addr:           s.Addr(),
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		PoolSize:       5,
		MinIdle:        1,
	})

	require.NoError(t, err)
	require.NotNil(t, client)

	assert.NoError(t, client.Set(ctx, "probe", "value", time.Minute).Err())
	assert.Equal(t, "value", s.Get("probe"))

	assert.NoError(t, client.Close(), "should close without errors")
}

func TestNew_ConnectionFailure(t *testing.T) {
	ctx := context.Background()

	client, err := redis.New(ctx, redis.Config{
		Addr:           "nonexistent.host:12345",
		ConnectTimeout: 100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
	})

	assert.Error(t, err, "Expected error when Redis connection fails")
	assert.Nil(t, client, "Client should be nil when connection fails")
	assert.Contains(t, err.Error(), redis.ErrPingRedis)
}

func TestNew_DefaultConnectTimeout(t *testing.T) {
	s := mockRedisServer(t)
	ctx := context.Background()

	// Нулевой таймаут не должен приводить к мгновенной отмене ping.
	client, err := redis.New(ctx, redis.Config{Addr: s.Addr()})

	require.NoError(t, err)
	require.NotNil(t, client)
	assert.NoError(t, client.Close())
}
