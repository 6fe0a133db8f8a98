package mocks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockCacher is a mock implementation of the cache interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockCacher struct {
	GetFunc    func(ctx context.Context, key string, dest any) error
	SetFunc    func(ctx context.Context, key string, value any, expiration time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	CloseFunc  func() error
}

// Get implements the cache interface. Without GetFunc every key misses.
func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return redis.Nil
}

// Set implements the cache interface
func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

// Delete implements the cache interface
func (m *MockCacher) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// Close implements the cache interface
func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
