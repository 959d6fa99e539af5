package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

func newTestCache(t *testing.T, opts ...redis.Option) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func compileSource(t *testing.T, src []byte) *machine.StateMachine {
	t.Helper()
	root, err := document.Parse(src)
	require.NoError(t, err)
	m, err := compiler.Compile(root)
	require.NoError(t, err)
	return m
}

var cachedSource = []byte(`
timers:
  t1: 5
states:
  A:
    on_timer:
      t1: B
  B:
    final: true
start_state: A
`)

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Put And Get", func(t *testing.T) {
		cache, _ := newTestCache(t)
		model := compileSource(t, cachedSource)

		require.NoError(t, cache.Put(ctx, cachedSource, model))

		loaded, err := cache.Get(ctx, cachedSource)
		require.NoError(t, err)
		assert.Equal(t, "A", loaded.StartState)
		assert.Equal(t, 5.0, loaded.Timers["t1"].Timeout)
		require.Contains(t, loaded.States, "A")
		assert.Equal(t, machine.ToState("B"), loaded.States["A"].TimerEdges["t1"].Target)
	})

	t.Run("Miss", func(t *testing.T) {
		cache, _ := newTestCache(t)

		_, err := cache.Get(ctx, cachedSource)
		assert.ErrorIs(t, err, redis.ErrCacheMiss)
	})

	t.Run("Forget", func(t *testing.T) {
		cache, _ := newTestCache(t)
		model := compileSource(t, cachedSource)

		require.NoError(t, cache.Put(ctx, cachedSource, model))
		require.NoError(t, cache.Forget(ctx, cachedSource))

		_, err := cache.Get(ctx, cachedSource)
		assert.ErrorIs(t, err, redis.ErrCacheMiss)
	})

	t.Run("Distinct Documents Distinct Keys", func(t *testing.T) {
		cache, _ := newTestCache(t)
		model := compileSource(t, cachedSource)

		require.NoError(t, cache.Put(ctx, cachedSource, model))

		// Same definition, different bytes: still a miss.
		other := append([]byte("# note\n"), cachedSource...)
		_, err := cache.Get(ctx, other)
		assert.ErrorIs(t, err, redis.ErrCacheMiss)
		assert.NotEqual(t, cache.Key(cachedSource), cache.Key(other))
	})

	t.Run("TTL Applied", func(t *testing.T) {
		cache, mr := newTestCache(t, redis.WithTTL(time.Minute))
		model := compileSource(t, cachedSource)

		require.NoError(t, cache.Put(ctx, cachedSource, model))
		mr.FastForward(2 * time.Minute)

		_, err := cache.Get(ctx, cachedSource)
		assert.ErrorIs(t, err, redis.ErrCacheMiss)
	})

	t.Run("Prefix Option", func(t *testing.T) {
		cache, _ := newTestCache(t, redis.WithPrefix("other:"))
		assert.Contains(t, cache.Key(cachedSource), "other:")
	})
}
