package grpc

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/feedback-server/pkg/cache"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// readThrough bundles what FindAndCache needs for one handler set.
type readThrough struct {
	cache    Cacher
	sf       *singleflight.Group
	gens     *generations
	ttl      time.Duration
	logger   *zap.Logger
	recorder Recorder
}

// generations counts invalidations per key. A fetch that started under an
// older generation must not repopulate the key.
type generations struct {
	mu sync.Mutex
	m  map[string]uint64
}

func (g *generations) current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m[key]
}

func (g *generations) bump(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.m == nil {
		g.m = make(map[string]uint64)
	}
	g.m[key]++
}

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

// store caches value fetched under generation gen. The generation is checked
// again after the write so an invalidation racing the Set still wins.
func (rt readThrough) store(key string, value any, reason string, gen uint64) {
	if rt.gens.current(key) != gen {
		rt.logger.Debug("skipping stale cache fill", zap.String("key", key), zap.String("reason", reason))
		return
	}

	setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(rt.ttl)
	if err := rt.cache.Set(setCtx, key, value, ttl); err != nil {
		rt.logger.Warn("failed to set cache", zap.String("key", key), zap.String("reason", reason), zap.Error(err))
		return
	}
	if rt.gens.current(key) != gen {
		if err := rt.cache.Delete(setCtx, key); err != nil {
			rt.logger.Warn("failed to drop stale cache fill", zap.String("key", key), zap.Error(err))
		}
		return
	}
	rt.logger.Debug("cache populated", zap.String("key", key), zap.String("reason", reason), zap.Duration("ttl", ttl))
}

func triggerBackgroundRefresh[T any](rt readThrough, key string, fn FetchFunc[T]) {
	gen := rt.gens.current(key)
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = rt.sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				rt.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			rt.store(key, value, "refresh", gen)
			return value, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and refresh-ahead logic.
// Hits are served from the cache and refreshed in the background; misses and
// cache errors fall through to fn, whose result is cached asynchronously.
func FindAndCache[T any](ctx context.Context, rt readThrough, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	var cached T
	err := rt.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		rt.logger.Debug("cache hit", zap.String("key", key))
		rt.recorder.CacheHit()
		triggerBackgroundRefresh(rt, key, fn)
		return cached, nil

	case cache.IsMiss(err):
		rt.logger.Debug("cache miss", zap.String("key", key))

	default:
		rt.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}
	rt.recorder.CacheMiss()

	v, err, shared := rt.sf.Do(key, func() (any, error) {
		gen := rt.gens.current(key)
		value, err := fn(ctx)
		if err != nil {
			rt.logger.Error("fetch failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		go rt.store(key, value, "miss", gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		rt.logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		rt.logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}

// invalidate drops cached dashboard reads so the next read sees fresh writes.
func (rt readThrough) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		rt.gens.bump(key)
		if err := rt.cache.Delete(ctx, key); err != nil {
			rt.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
