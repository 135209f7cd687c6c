package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/holdstate/internal/model"
)

// SyncService атомарно записывает пачки профилей и карты перенумерации холдов.
type SyncService struct {
	pool     *pgxpool.Pool
	profiles *ProfileRepository
	remaps   *HoldRemapRepository
}

// NewSyncService создаёт новый сервис.
func NewSyncService(
	pool *pgxpool.Pool,
	profiles *ProfileRepository,
	remaps *HoldRemapRepository,
) *SyncService {
	return &SyncService{
		pool:     pool,
		profiles: profiles,
		remaps:   remaps,
	}
}

// SaveProfiles upserts all profiles in a single transaction.
// Either every profile is saved or none.
func (s *SyncService) SaveProfiles(ctx context.Context, profiles []*model.PlayerProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx, "save profiles")

	for _, p := range profiles {
		if err := s.profiles.SaveTx(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("profiles saved", "count", len(profiles))
	return nil
}

// ApplyRemap records remap for source and rekeys the challenge records of
// every stored profile with it, all in one transaction.
// Returns the number of profiles whose hold IDs changed.
func (s *SyncService) ApplyRemap(ctx context.Context, source string, remap map[uint32]uint32) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx, "apply remap")

	if err := s.remaps.SaveTx(ctx, tx, source, remap); err != nil {
		return 0, err
	}

	// Строки блокируются до конца транзакции
	profiles, err := s.profiles.queryTx(ctx, tx,
		`SELECT id, name, vars, updated_at FROM player_profiles ORDER BY name, id FOR UPDATE`)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, p := range profiles {
		before := p.Challenges().Clone()
		p.Challenges().RekeyHoldIDs(remap)
		if p.Challenges().Equal(before) {
			continue
		}
		if err := s.profiles.SaveTx(ctx, tx, p); err != nil {
			return 0, err
		}
		changed++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("hold remap applied",
		"source", source,
		"holds", len(remap),
		"profiles_changed", changed)
	return changed, nil
}

func rollback(ctx context.Context, tx pgx.Tx, op string) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("rollback failed", "op", op, "error", err)
	}
}
