package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStore(rdb, time.Hour), mr
}

func TestSessionStorageRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	s := store.Session("sess-1")

	value, err := s.Get(ctx, "push_notification_dismissed")
	require.NoError(t, err)
	assert.Equal(t, "", value, "missing key reads as empty")

	require.NoError(t, s.Set(ctx, "push_notification_dismissed", "true"))

	value, err = s.Get(ctx, "push_notification_dismissed")
	require.NoError(t, err)
	assert.Equal(t, "true", value)

	require.NoError(t, s.Delete(ctx, "push_notification_dismissed"))
	value, err = s.Get(ctx, "push_notification_dismissed")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Session("sess-1").Set(ctx, "flag", "true"))

	value, err := store.Session("sess-2").Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSessionValuesExpireWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Session("sess-1").Set(ctx, "flag", "true"))

	mr.FastForward(2 * time.Hour)

	value, err := store.Session("sess-1").Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "", value, "session values do not outlive the session TTL")
}
