package reconcile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/udisondev/holdstate/internal/backup"
	"github.com/udisondev/holdstate/internal/model"
)

// Source yields one snapshot of every profile it knows about.
type Source interface {
	// Name identifies the source for hold remap lookups and logs.
	Name() string
	Profiles(ctx context.Context) ([]*model.PlayerProfile, error)
}

// ProfileLister is the part of db.ProfileRepository a Source needs.
type ProfileLister interface {
	List(ctx context.Context) ([]*model.PlayerProfile, error)
}

// RemapLoader returns the hold ID import map recorded for a source.
// db.HoldRemapRepository implements it.
type RemapLoader interface {
	Load(ctx context.Context, source string) (map[uint32]uint32, error)
}

type repositorySource struct {
	name   string
	lister ProfileLister
}

// Repository wraps a profile repository as a Source.
func Repository(name string, lister ProfileLister) Source {
	return &repositorySource{name: name, lister: lister}
}

func (s *repositorySource) Name() string { return s.name }

func (s *repositorySource) Profiles(ctx context.Context) ([]*model.PlayerProfile, error) {
	profiles, err := s.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles from %s: %w", s.name, err)
	}
	return profiles, nil
}

type backupSource struct {
	path string
}

// BackupFile reads the latest snapshot per profile from a backup file.
// The source name is the file's base name.
func BackupFile(path string) Source {
	return &backupSource{path: path}
}

func (s *backupSource) Name() string { return filepath.Base(s.path) }

func (s *backupSource) Profiles(ctx context.Context) ([]*model.PlayerProfile, error) {
	store, err := backup.OpenExisting(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	profiles, err := store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", s.path, err)
	}
	return profiles, nil
}
