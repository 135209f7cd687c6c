// Package reconcile folds profile snapshots from several sources into one set.
// Snapshots are matched by player name. Challenge records are unioned after
// each source's hold IDs are remapped; script variables keep the value from
// the earliest source that has one.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/holdstate/internal/model"
)

// Batch is everything loaded from one source.
type Batch struct {
	Source   string
	Profiles []*model.PlayerProfile
	Remap    map[uint32]uint32
}

// Conflict lists script variables whose values disagreed during a merge.
type Conflict struct {
	Profile string
	Source  string
	Vars    []string
}

// Result is the outcome of Import.
type Result struct {
	// Profiles are the merged profiles ordered by name.
	Profiles  []*model.PlayerProfile
	Conflicts []Conflict
}

// Importer loads and merges snapshot sources.
type Importer struct {
	remaps  RemapLoader
	workers int
}

// NewImporter creates an importer. remaps may be nil when no hold IDs need
// remapping. workers caps concurrent source loads (values below 1 mean 1).
func NewImporter(remaps RemapLoader, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{remaps: remaps, workers: workers}
}

// LoadAll loads every source concurrently. Batches keep the order of sources.
// The first failing source cancels the rest.
func (im *Importer) LoadAll(ctx context.Context, sources ...Source) ([]Batch, error) {
	batches := make([]Batch, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for i, src := range sources {
		g.Go(func() error {
			profiles, err := src.Profiles(gctx)
			if err != nil {
				return fmt.Errorf("loading source %s: %w", src.Name(), err)
			}

			var remap map[uint32]uint32
			if im.remaps != nil {
				remap, err = im.remaps.Load(gctx, src.Name())
				if err != nil {
					return fmt.Errorf("loading hold remap for %s: %w", src.Name(), err)
				}
			}

			batches[i] = Batch{Source: src.Name(), Profiles: profiles, Remap: remap}
			slog.Debug("source loaded",
				"source", src.Name(),
				"profiles", len(profiles),
				"remapped_holds", len(remap))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// Import loads all sources and merges them.
func (im *Importer) Import(ctx context.Context, sources ...Source) (*Result, error) {
	batches, err := im.LoadAll(ctx, sources...)
	if err != nil {
		return nil, err
	}
	return Merge(batches), nil
}

// Merge folds batches in order. The first snapshot of a name becomes the base
// profile; later ones are absorbed into it. Profiles in batches are modified.
func Merge(batches []Batch) *Result {
	byName := make(map[string]*model.PlayerProfile)
	res := &Result{}

	for _, b := range batches {
		for _, p := range b.Profiles {
			if p == nil {
				continue
			}
			if len(b.Remap) > 0 {
				p.Challenges().RekeyHoldIDs(b.Remap)
			}

			base, ok := byName[p.Name()]
			if !ok {
				byName[p.Name()] = p
				continue
			}

			conflicts := base.Absorb(p)
			if p.UpdatedAt().After(base.UpdatedAt()) {
				base.Touch(p.UpdatedAt())
			}
			if len(conflicts) > 0 {
				slog.Warn("script variable conflict, keeping earlier value",
					"profile", p.Name(),
					"source", b.Source,
					"vars", conflicts)
				res.Conflicts = append(res.Conflicts, Conflict{
					Profile: p.Name(),
					Source:  b.Source,
					Vars:    conflicts,
				})
			}
		}
	}

	res.Profiles = make([]*model.PlayerProfile, 0, len(byName))
	for _, p := range byName {
		res.Profiles = append(res.Profiles, p)
	}
	sort.Slice(res.Profiles, func(i, j int) bool {
		return res.Profiles[i].Name() < res.Profiles[j].Name()
	})
	return res
}
