package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) *Session {
	t.Helper()
	ctx := context.Background()

	sess, err := store.Create(ctx, 7)
	require.NoError(t, err)
	_, err = uuid.Parse(sess.Token)
	require.NoError(t, err)

	sess.AppendMessage("user", "hello", time.Now())
	sess.Pending = &PendingAction{Action: "create_po", Data: json.RawMessage(`{"supplier":"UNKNOWN"}`)}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), loaded.UserID)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "hello", loaded.History[0].Content)
	require.NotNil(t, loaded.Pending)
	assert.JSONEq(t, `{"supplier":"UNKNOWN"}`, string(loaded.Pending.Data))

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	return sess
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Hour)
	sess := exerciseStore(t, store)

	assert.True(t, mr.Exists("session:"+sess.Token))
	assert.Equal(t, time.Hour, mr.TTL("session:"+sess.Token))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	again, err := store.Create(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), again.Token))
	_, err = store.Load(context.Background(), again.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = OpenRedis(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := exerciseStore(t, store)

	loaded, err := store.Load(context.Background(), sess.Token)
	require.NoError(t, err)
	loaded.History = nil
	again, err := store.Load(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Len(t, again.History, 1, "loaded sessions are copies")

	now = now.Add(2 * time.Minute)
	_, err = store.Load(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendMessage_KeepsNewest(t *testing.T) {
	var s Session
	for i := 0; i < MaxHistory+5; i++ {
		s.AppendMessage("user", fmt.Sprint(i), time.Time{})
	}
	require.Len(t, s.History, MaxHistory)
	assert.Equal(t, "5", s.History[0].Content)
	assert.Equal(t, fmt.Sprint(MaxHistory+4), s.History[MaxHistory-1].Content)
}
