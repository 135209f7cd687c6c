package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/holdstate/internal/model"
)

// ProfileRepository stores player profiles as packed variable blobs.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// LoadByID loads a profile by ID.
// Returns nil, nil if the profile does not exist.
func (r *ProfileRepository) LoadByID(ctx context.Context, id uuid.UUID) (*model.PlayerProfile, error) {
	var (
		name      string
		blob      []byte
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT name, vars, updated_at FROM player_profiles WHERE id = $1`, id,
	).Scan(&name, &blob, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile %s: %w", id, err)
	}

	p, err := model.LoadPlayerProfile(id, name, blob, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}
	return p, nil
}

// LoadByName loads every profile with the given player name, newest first.
// Rows with corrupt blobs are skipped and logged.
func (r *ProfileRepository) LoadByName(ctx context.Context, name string) ([]*model.PlayerProfile, error) {
	return r.query(ctx,
		`SELECT id, name, vars, updated_at FROM player_profiles WHERE name = $1 ORDER BY updated_at DESC`,
		name)
}

// List loads all profiles ordered by name.
// Rows with corrupt blobs are skipped and logged.
func (r *ProfileRepository) List(ctx context.Context) ([]*model.PlayerProfile, error) {
	return r.query(ctx,
		`SELECT id, name, vars, updated_at FROM player_profiles ORDER BY name, updated_at DESC`)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *ProfileRepository) query(ctx context.Context, sql string, args ...any) ([]*model.PlayerProfile, error) {
	return queryProfiles(ctx, r.db, sql, args...)
}

func (r *ProfileRepository) queryTx(ctx context.Context, tx pgx.Tx, sql string, args ...any) ([]*model.PlayerProfile, error) {
	return queryProfiles(ctx, tx, sql, args...)
}

func queryProfiles(ctx context.Context, q querier, sql string, args ...any) ([]*model.PlayerProfile, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*model.PlayerProfile, 0, 8)
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			blob      []byte
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &name, &blob, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		p, err := model.LoadPlayerProfile(id, name, blob, updatedAt)
		if err != nil {
			slog.Warn("skipping unreadable profile", "profileID", id, "profile", name, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	return profiles, nil
}

// Save upserts a profile.
func (r *ProfileRepository) Save(ctx context.Context, p *model.PlayerProfile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "profileID", p.ID(), "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveTx upserts a profile within an existing transaction.
// The profile's save time is set to now.
func (r *ProfileRepository) SaveTx(ctx context.Context, tx pgx.Tx, p *model.PlayerProfile) error {
	blob, err := p.Pack()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`INSERT INTO player_profiles (id, name, vars, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, vars = EXCLUDED.vars, updated_at = EXCLUDED.updated_at`,
		p.ID(), p.Name(), blob, now,
	); err != nil {
		return fmt.Errorf("saving profile %s: %w", p.ID(), err)
	}
	p.Touch(now)

	slog.Debug("profile saved",
		"profileID", p.ID(),
		"profile", p.Name(),
		"bytes", len(blob),
		"holds", len(p.Challenges().HoldIDs()))

	return nil
}

// Delete removes a profile. Missing profiles are ignored.
func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM player_profiles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting profile %s: %w", id, err)
	}
	return nil
}
