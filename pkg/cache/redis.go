package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = redis.Nil

// IsMiss reports whether err signals an absent key.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

type Cache struct {
	client *redis.Client
	prefix string
}

type Options struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithPrefix namespaces every key, so one redis can serve several tenants or environments.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address: "localhost:6379",
		Prefix:  "feedback:",
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Cache{client: client, prefix: options.Prefix}, nil
}

// Get decodes the JSON value stored at key into dest. A missing key yields ErrMiss;
// a value that is not valid JSON for dest yields the decoding error.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// Set stores value as JSON. A zero expiration keeps the key until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, expiration).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
