package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// PoolOptions sizes the connection pool. Zero values keep the pgxpool
// defaults or any pool_* parameters already present in the URL.
type PoolOptions struct {
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	StatementTimeout time.Duration
}

// Validate rejects option combinations pgxpool would misbehave on
func (o PoolOptions) Validate() error {
	if o.MaxConns < 0 || o.MinConns < 0 {
		return fmt.Errorf("pool sizes cannot be negative")
	}
	if o.MaxConns > 0 && o.MinConns > o.MaxConns {
		return fmt.Errorf("min connections %d exceed max connections %d", o.MinConns, o.MaxConns)
	}
	return nil
}

// NewConnection creates a connection pool with every session pinned to UTC
func NewConnection(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	config, err := newPoolConfig(databaseURL, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"max_conns": config.MaxConns,
		"min_conns": config.MinConns,
	}).Info("Database pool ready")

	return &DB{Pool: pool}, nil
}

func newPoolConfig(databaseURL string, opts PoolOptions) (*pgxpool.Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.ConnConfig.RuntimeParams["timezone"] = "UTC"
	if opts.StatementTimeout > 0 {
		config.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	return config, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
