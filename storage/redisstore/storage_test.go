package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// needs a live server: REDIS_ADDR=localhost:6379 go test ./storage/redisstore
func TestStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := Client(addr, "", 0)
	defer rdb.Close()
	require.True(t, Healthy(context.Background(), rdb))

	s := New(rdb, "test:session", uuid.NewString(), time.Minute)
	defer rdb.Del(context.Background(), s.Key())

	_, ok, err := s.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("token", "abc"))
	v, ok, err := s.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	ttl, err := rdb.TTL(context.Background(), s.Key()).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, s.Remove("token", "user"))
	_, ok, err = s.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_ReadRefreshesExpiry(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := Client(addr, "", 0)
	defer rdb.Close()
	ctx := context.Background()

	s := New(rdb, "test:session", uuid.NewString(), time.Minute)
	defer rdb.Del(ctx, s.Key())
	require.NoError(t, s.Set("token", "abc"))

	// as if the session had been idle for 50s
	require.NoError(t, rdb.Expire(ctx, s.Key(), 10*time.Second).Err())
	_, ok, err := s.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := rdb.TTL(ctx, s.Key()).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 10*time.Second, "ttl = %s", ttl)
}

func TestHealthy_Unreachable(t *testing.T) {
	rdb := Client("127.0.0.1:1", "", 0)
	defer rdb.Close()
	assert.False(t, Healthy(context.Background(), rdb))
	assert.False(t, Healthy(context.Background(), nil))
}
