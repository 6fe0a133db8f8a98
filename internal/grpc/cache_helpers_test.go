package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/feedback-server/pkg/cache/cachetest"
)

func newReadThrough(mem *cachetest.Memory) readThrough {
	return readThrough{
		cache:    mem,
		sf:       &singleflight.Group{},
		gens:     &generations{},
		ttl:      time.Minute,
		logger:   zap.NewNop(),
		recorder: noopRecorder{},
	}
}

func TestAddTTLJitter(t *testing.T) {
	assert.Equal(t, 10*time.Second, addTTLJitter(10*time.Second))

	for i := 0; i < 20; i++ {
		got := addTTLJitter(10 * time.Minute)
		assert.InDelta(t, float64(10*time.Minute), float64(got), float64(15*time.Second))
	}
}

func TestFindAndCache_MissPopulatesCache(t *testing.T) {
	mem := cachetest.NewMemory()
	rt := newReadThrough(mem)

	got, err := FindAndCache(context.Background(), rt, "k", func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	assert.Eventually(t, func() bool { return mem.Has("k") }, time.Second, 5*time.Millisecond)
}

func TestFindAndCache_InvalidationDuringFetch(t *testing.T) {
	t.Run("miss fill started before invalidate is dropped", func(t *testing.T) {
		mem := cachetest.NewMemory()
		rt := newReadThrough(mem)

		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan int, 1)
		go func() {
			v, err := FindAndCache(context.Background(), rt, "k", func(context.Context) (int, error) {
				close(started)
				<-release
				return 1, nil
			})
			assert.NoError(t, err)
			done <- v
		}()

		<-started
		rt.invalidate(context.Background(), "k")
		close(release)

		assert.Equal(t, 1, <-done, "the caller still gets its value")
		assert.Never(t, func() bool { return mem.Has("k") }, 200*time.Millisecond, 10*time.Millisecond)
	})

	t.Run("background refresh after invalidate does not restore the old value", func(t *testing.T) {
		mem := cachetest.NewMemory()
		rt := newReadThrough(mem)
		require.NoError(t, mem.Set(context.Background(), "k", 1, time.Minute))

		fetched := make(chan struct{})
		got, err := FindAndCache(context.Background(), rt, "k", func(context.Context) (int, error) {
			defer close(fetched)
			return 1, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, got)

		rt.invalidate(context.Background(), "k")

		select {
		case <-fetched:
		case <-time.After(3 * time.Second):
			t.Fatal("refresh did not run")
		}
		assert.Never(t, func() bool { return mem.Has("k") }, 200*time.Millisecond, 10*time.Millisecond)
	})

	t.Run("reads after invalidate fill again", func(t *testing.T) {
		mem := cachetest.NewMemory()
		rt := newReadThrough(mem)
		rt.invalidate(context.Background(), "k")

		_, err := FindAndCache(context.Background(), rt, "k", func(context.Context) (int, error) { return 2, nil })
		require.NoError(t, err)
		assert.Eventually(t, func() bool { return mem.Has("k") }, time.Second, 5*time.Millisecond)
	})
}
