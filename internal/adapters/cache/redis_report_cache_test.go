package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Revenue int64  `json:"revenue"`
	Label   string `json:"label"`
}

func newTestCache(t *testing.T) (*RedisReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisReportCache(client, "reports:"), mr
}

func TestRedisReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	var got payload
	hit, err := c.Get(ctx, "dashboard:all", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "dashboard:all", payload{Revenue: 4200, Label: "Oct"}, time.Minute))
	assert.True(t, mr.Exists("reports:dashboard:all"))

	hit, err = c.Get(ctx, "dashboard:all", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Revenue: 4200, Label: "Oct"}, got)

	mr.FastForward(2 * time.Minute)
	hit, err = c.Get(ctx, "dashboard:all", &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry expires after ttl")
}

func TestRedisReportCacheZeroTTLSkipsWrite(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(context.Background(), "k", payload{}, 0))
	assert.False(t, mr.Exists("reports:k"))
}

func TestRedisReportCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), " ", &payload{})
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "", payload{}, time.Minute))
}

func TestRedisReportCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("reports:bad", "{not json"))

	_, err := c.Get(context.Background(), "bad", &payload{})
	assert.ErrorContains(t, err, "decode")
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Open(context.Background(), "not a url")
	assert.Error(t, err)
}
