package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	Bootstrap       []string
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// WithBootstrap registers statements executed once after the pool is reachable,
// typically idempotent CREATE TABLE IF NOT EXISTS DDL.
func WithBootstrap(statements ...string) Option {
	return func(o *Options) {
		o.Bootstrap = append(o.Bootstrap, statements...)
	}
}

// New opens a connection pool, retrying with linear backoff, and runs any
// bootstrap statements against it.
func New(opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          "sqlite3",
		DataSource:      "file::memory:?cache=shared&_foreign_keys=on",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Driver == "" {
		return nil, fmt.Errorf("database driver cannot be empty")
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("database data source cannot be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}

	var db *sql.DB
	var err error

	for i := 0; i < options.RetryAttempts; i++ {
		db, err = sql.Open(options.Driver, options.DataSource)
		if err == nil {
			// sqlite serialises writers; a single writer connection avoids SQLITE_BUSY
			// on the multi-statement episode transaction.
			db.SetMaxOpenConns(options.MaxOpenConns)
			db.SetMaxIdleConns(options.MaxIdleConns)
			db.SetConnMaxLifetime(options.ConnMaxLifetime)
			db.SetConnMaxIdleTime(options.ConnMaxIdleTime)

			if err = db.Ping(); err == nil {
				break
			}
			db.Close()
			db = nil
		}

		if i < options.RetryAttempts-1 {
			time.Sleep(time.Duration(i+1) * options.RetryDelay)
		}
	}
	if db == nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, err)
	}

	if err := bootstrap(context.Background(), db, options.Bootstrap); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func bootstrap(ctx context.Context, db *sql.DB, statements []string) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap statement %d: %w", i, err)
		}
	}
	return nil
}
