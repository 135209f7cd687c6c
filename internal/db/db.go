package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool for profile storage.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Profiles returns a profile repository bound to this pool.
func (d *DB) Profiles() *ProfileRepository {
	return NewProfileRepository(d.pool)
}

// HoldRemaps returns a hold remap repository bound to this pool.
func (d *DB) HoldRemaps() *HoldRemapRepository {
	return NewHoldRemapRepository(d.pool)
}

// Sync returns a service that writes profile batches and hold remaps atomically.
func (d *DB) Sync() *SyncService {
	return NewSyncService(d.pool, d.Profiles(), d.HoldRemaps())
}
