// Package testutil holds fixtures shared by tests that work with whole profiles.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/udisondev/holdstate/internal/backup"
	"github.com/udisondev/holdstate/internal/model"
)

// Holds maps a hold ID to the challenge names completed in it.
type Holds map[uint32][]string

// NewProfile creates a profile with the given challenge record.
func NewProfile(tb testing.TB, name string, holds Holds) *model.PlayerProfile {
	tb.Helper()

	p, err := model.NewPlayerProfile(name)
	if err != nil {
		tb.Fatalf("creating profile %q: %v", name, err)
	}
	for holdID, names := range holds {
		p.Challenges().Add(holdID, names...)
	}
	return p
}

// WriteBackup writes one snapshot per profile into a fresh backup file under
// a temp dir and returns its path.
func WriteBackup(tb testing.TB, fileName string, profiles ...*model.PlayerProfile) string {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), fileName)

	store, err := backup.Open(ctx, path)
	if err != nil {
		tb.Fatalf("opening backup %s: %v", path, err)
	}
	defer store.Close()

	if err := store.Write(ctx, profiles...); err != nil {
		tb.Fatalf("writing backup %s: %v", path, err)
	}
	return path
}
