package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the store uses.
type fakeRedis struct {
	goredis.Cmdable

	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vals[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.vals[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.vals[k]; ok {
			delete(f.vals, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestSessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := NewSessions(rdb)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.Create(ctx, models.Session{ID: "abc", UserID: 7, ExpiresAt: exp}))

	ttl := rdb.ttls[keyPrefix+"abc"]
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, exp.Equal(got.ExpiresAt))

	err = store.Create(ctx, models.Session{ID: "abc", UserID: 8, ExpiresAt: exp})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSessionsRejectExpired(t *testing.T) {
	store := NewSessions(newFakeRedis())
	err := store.Create(context.Background(), models.Session{ID: "x", UserID: 1, ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)

	n, err := store.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
