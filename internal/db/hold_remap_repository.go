package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HoldRemapRepository keeps the hold ID renumbering recorded by each hold import.
type HoldRemapRepository struct {
	db *pgxpool.Pool
}

// NewHoldRemapRepository creates a new HoldRemapRepository.
func NewHoldRemapRepository(db *pgxpool.Pool) *HoldRemapRepository {
	return &HoldRemapRepository{db: db}
}

// Load returns the old→new hold ID map recorded for source.
// An unknown source yields an empty map.
func (r *HoldRemapRepository) Load(ctx context.Context, source string) (map[uint32]uint32, error) {
	rows, err := r.db.Query(ctx,
		`SELECT old_hold_id, new_hold_id FROM hold_remaps WHERE source = $1`, source)
	if err != nil {
		return nil, fmt.Errorf("querying hold remaps for %q: %w", source, err)
	}
	defer rows.Close()

	m := make(map[uint32]uint32, 16)
	for rows.Next() {
		var oldID, newID int64
		if err := rows.Scan(&oldID, &newID); err != nil {
			return nil, fmt.Errorf("scanning hold remap row: %w", err)
		}
		m[uint32(oldID)] = uint32(newID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hold remap rows: %w", err)
	}
	return m, nil
}

// Save replaces the map recorded for source.
func (r *HoldRemapRepository) Save(ctx context.Context, source string, remap map[uint32]uint32) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "source", source, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, source, remap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveTx replaces the map recorded for source within an existing transaction.
func (r *HoldRemapRepository) SaveTx(ctx context.Context, tx pgx.Tx, source string, remap map[uint32]uint32) error {
	if _, err := tx.Exec(ctx, `DELETE FROM hold_remaps WHERE source = $1`, source); err != nil {
		return fmt.Errorf("deleting hold remaps for %q: %w", source, err)
	}

	if len(remap) > 0 {
		rows := make([][]any, 0, len(remap))
		for oldID, newID := range remap {
			if oldID == 0 || newID == 0 {
				return fmt.Errorf("hold remap %d→%d: hold IDs must be positive", oldID, newID)
			}
			rows = append(rows, []any{source, int64(oldID), int64(newID)})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"hold_remaps"},
			[]string{"source", "old_hold_id", "new_hold_id"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting hold remaps for %q: %w", source, err)
		}
	}
	return nil
}
