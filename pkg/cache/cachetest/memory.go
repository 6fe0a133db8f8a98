// Package cachetest provides an in-process stand-in for the redis cache that
// keeps the same JSON round-trip and miss semantics.
package cachetest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type entry struct {
	raw    []byte
	expiry time.Time
}

// Memory is a concurrency-safe map-backed cache. Values are stored as JSON so
// decoding behaves exactly as it does against redis.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry

	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++

	e, ok := m.data[key]
	if !ok || (!e.expiry.IsZero() && time.Now().After(e.expiry)) {
		return redis.Nil
	}
	return json.Unmarshal(e.raw, dest)
}

func (m *Memory) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++

	e := entry{raw: raw}
	if expiration > 0 {
		e.expiry = time.Now().Add(expiration)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// PutRaw stores bytes verbatim, bypassing JSON encoding. Used to simulate
// corrupted entries.
func (m *Memory) PutRaw(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{raw: raw}
}

// Has reports whether key is present and unexpired.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	return ok && (e.expiry.IsZero() || time.Now().Before(e.expiry))
}
