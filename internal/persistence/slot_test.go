package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSlot runs the behaviour every Slot implementation shares.
func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()
	key := SlotKey("test")

	_, err := slot.Get(ctx, key)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Set(ctx, key, []byte(`{"kind":"full","lines":[]}`)))
	data, err := slot.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"full","lines":[]}`, string(data))

	require.NoError(t, slot.Set(ctx, key, []byte(`[]`)))
	data, err = slot.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, slot.Delete(ctx, key))
	_, err = slot.Get(ctx, key)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	assert.NoError(t, slot.Delete(ctx, "nonexistent"))
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestFileSlot(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	require.NoError(t, err)
	exerciseSlot(t, slot)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must not be left behind")
}

func TestFileSlot_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileSlot(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "cart:default", []byte("saved")))

	second, err := NewFileSlot(dir)
	require.NoError(t, err)
	data, err := second.Get(ctx, "cart:default")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisSlot, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSlot(client, ttl), mr
}

func TestRedisSlot(t *testing.T) {
	slot, _ := setupTestRedis(t, 0)
	exerciseSlot(t, slot)
}

func TestRedisSlot_TTL(t *testing.T) {
	slot, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, slot.Set(context.Background(), "cart:default", []byte("x")))
	assert.Equal(t, time.Hour, mr.TTL("cart:default"))

	persistent, mr2 := setupTestRedis(t, 0)
	require.NoError(t, persistent.Set(context.Background(), "cart:default", []byte("x")))
	assert.Zero(t, mr2.TTL("cart:default"))
}

func TestRedisSlot_ServerDown(t *testing.T) {
	slot, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := slot.Get(context.Background(), "cart:default")
	assert.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, ErrSlotEmpty)
}
