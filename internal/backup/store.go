// Package backup writes player profile snapshots into standalone SQLite files.
// Every snapshot carries a BLAKE2b digest of its blob; snapshots that fail the
// check are skipped on read so one damaged row never blocks a restore.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/udisondev/holdstate/internal/backup/migrations"
	"github.com/udisondev/holdstate/internal/model"
)

// ErrDigestMismatch marks a snapshot whose blob does not match its digest.
var ErrDigestMismatch = errors.New("backup: digest mismatch")

// Snapshot is one stored copy of a profile.
type Snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Profile   *model.PlayerProfile
}

// Store is an open backup file.
type Store struct {
	sqlDB *sql.DB
	path  string
}

// Open opens (or creates) a backup file and applies its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("backup path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, path: cleanPath}, nil
}

// OpenExisting opens a backup file for reading. Unlike Open it never creates
// the file; a missing path is an error wrapping fs.ErrNotExist.
func OpenExisting(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("backup path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening backup: %s is a directory", path)
	}
	return Open(ctx, path)
}

// Path returns the backup file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Write stores a snapshot of every profile in a single transaction.
func (s *Store) Write(ctx context.Context, profiles ...*model.PlayerProfile) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("backup rollback failed", "path", s.path, "error", err)
		}
	}()

	now := time.Now().UTC()
	for _, p := range profiles {
		blob, err := p.Pack()
		if err != nil {
			return err
		}
		sum := blake2b.Sum256(blob)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO snapshots (id, profile_id, name, vars, digest, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
			uuid.NewString(),
			p.ID().String(),
			p.Name(),
			blob,
			sum[:],
			now.UnixMilli(),
		); err != nil {
			return fmt.Errorf("writing snapshot of profile %s: %w", p.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("backup written", "path", s.path, "profiles", len(profiles))
	return nil
}

// Snapshots returns every readable snapshot, oldest first.
// Damaged snapshots are skipped and logged.
func (s *Store) Snapshots(ctx context.Context) ([]Snapshot, error) {
	return s.query(ctx, `
SELECT id, profile_id, name, vars, digest, created_at
FROM snapshots
ORDER BY created_at, rowid
`)
}

// ProfileSnapshots returns the readable snapshots of one profile, oldest first.
func (s *Store) ProfileSnapshots(ctx context.Context, profileID uuid.UUID) ([]Snapshot, error) {
	return s.query(ctx, `
SELECT id, profile_id, name, vars, digest, created_at
FROM snapshots
WHERE profile_id = ?
ORDER BY created_at, rowid
`, profileID.String())
}

// Latest returns the newest readable snapshot of each profile.
func (s *Store) Latest(ctx context.Context) ([]*model.PlayerProfile, error) {
	snaps, err := s.Snapshots(ctx)
	if err != nil {
		return nil, err
	}
	latest := make(map[uuid.UUID]*model.PlayerProfile, len(snaps))
	order := make([]uuid.UUID, 0, len(snaps))
	for _, snap := range snaps {
		id := snap.Profile.ID()
		if _, seen := latest[id]; !seen {
			order = append(order, id)
		}
		latest[id] = snap.Profile // отсортировано по времени — последний побеждает
	}
	out := make([]*model.PlayerProfile, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Snapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			rawID, rawProfileID, name string
			blob, digest              []byte
			createdAt                 int64
		)
		if err := rows.Scan(&rawID, &rawProfileID, &name, &blob, &digest, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		snap, err := decodeSnapshot(rawID, rawProfileID, name, blob, digest, createdAt)
		if err != nil {
			slog.Warn("skipping damaged snapshot", "path", s.path, "snapshot", rawID, "error", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}
	return snaps, nil
}

func decodeSnapshot(rawID, rawProfileID, name string, blob, digest []byte, createdAt int64) (Snapshot, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot id: %w", err)
	}
	profileID, err := uuid.Parse(rawProfileID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("profile id: %w", err)
	}
	sum := blake2b.Sum256(blob)
	if !bytes.Equal(sum[:], digest) {
		return Snapshot{}, ErrDigestMismatch
	}
	created := time.UnixMilli(createdAt).UTC()
	p, err := model.LoadPlayerProfile(profileID, name, blob, created)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, CreatedAt: created, Profile: p}, nil
}
