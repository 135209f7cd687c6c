package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/holdstate/internal/db"
	"github.com/udisondev/holdstate/internal/model"
	"github.com/udisondev/holdstate/internal/scriptvars"
	"github.com/udisondev/holdstate/internal/testutil"
)

func TestMain(m *testing.M) {
	scriptvars.Init()
	os.Exit(m.Run())
}

type staticSource struct {
	name     string
	profiles []*model.PlayerProfile
	err      error
	calls    *atomic.Int32
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Profiles(ctx context.Context) ([]*model.PlayerProfile, error) {
	if s.calls != nil {
		s.calls.Add(1)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

type staticRemaps map[string]map[uint32]uint32

func (r staticRemaps) Load(_ context.Context, source string) (map[uint32]uint32, error) {
	return r[source], nil
}

type staticLister []*model.PlayerProfile

func (l staticLister) List(context.Context) ([]*model.PlayerProfile, error) {
	return l, nil
}

func newProfile(t *testing.T, name string) *model.PlayerProfile {
	t.Helper()
	p, err := model.NewPlayerProfile(name)
	require.NoError(t, err)
	return p
}

func TestImport_RekeyAndUnion(t *testing.T) {
	home := newProfile(t, "Beethro")
	home.Challenges().Add(7, "Z")

	laptop := newProfile(t, "Beethro")
	laptop.Challenges().Add(5, "A", "B")
	laptop.Challenges().Add(9, "Q")

	im := NewImporter(staticRemaps{"laptop": {5: 7}}, 2)
	res, err := im.Import(context.Background(),
		&staticSource{name: "home", profiles: []*model.PlayerProfile{home}},
		&staticSource{name: "laptop", profiles: []*model.PlayerProfile{laptop}},
	)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1)

	merged := res.Profiles[0]
	assert.Equal(t, home.ID(), merged.ID(), "first source is the base")
	assert.Equal(t, []uint32{7, 9}, merged.Challenges().HoldIDs())
	assert.Equal(t, []string{"A", "B", "Z"}, merged.Challenges().Get(7))
	assert.Equal(t, []string{"Q"}, merged.Challenges().Get(9))
	assert.Empty(t, res.Conflicts)
}

func TestImport_RemapOnlyAppliesToItsSource(t *testing.T) {
	a := newProfile(t, "Halph")
	a.Challenges().Add(5, "home-five")
	b := newProfile(t, "Halph")
	b.Challenges().Add(5, "laptop-five")

	im := NewImporter(staticRemaps{"laptop": {5: 6}}, 1)
	res, err := im.Import(context.Background(),
		&staticSource{name: "home", profiles: []*model.PlayerProfile{a}},
		&staticSource{name: "laptop", profiles: []*model.PlayerProfile{b}},
	)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1)
	assert.Equal(t, []string{"home-five"}, res.Profiles[0].Challenges().Get(5))
	assert.Equal(t, []string{"laptop-five"}, res.Profiles[0].Challenges().Get(6))
}

func TestImport_ConflictsKeepEarlierValue(t *testing.T) {
	a := newProfile(t, "Beethro")
	a.ScriptVars().Set("keys", scriptvars.Int(1))
	b := newProfile(t, "Beethro")
	b.ScriptVars().Set("keys", scriptvars.Int(3))
	b.ScriptVars().Set("met", scriptvars.Text("Halph"))
	b.Touch(a.UpdatedAt().Add(time.Hour))

	res, err := NewImporter(nil, 4).Import(context.Background(),
		&staticSource{name: "first", profiles: []*model.PlayerProfile{a}},
		&staticSource{name: "second", profiles: []*model.PlayerProfile{b}},
	)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1)

	merged := res.Profiles[0]
	assert.Equal(t, scriptvars.Int(1), merged.ScriptVars().Get("keys"))
	assert.Equal(t, scriptvars.Text("Halph"), merged.ScriptVars().Get("met"))
	assert.Equal(t, b.UpdatedAt(), merged.UpdatedAt(), "newest save time wins")

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, Conflict{Profile: "Beethro", Source: "second", Vars: []string{"keys"}}, res.Conflicts[0])
}

func TestImport_SortedByName(t *testing.T) {
	res, err := NewImporter(nil, 2).Import(context.Background(),
		&staticSource{name: "s1", profiles: []*model.PlayerProfile{newProfile(t, "Gunthro"), nil}},
		&staticSource{name: "s2", profiles: []*model.PlayerProfile{newProfile(t, "Beethro")}},
		Repository("db", staticLister{newProfile(t, "Halph")}),
	)
	require.NoError(t, err)

	var names []string
	for _, p := range res.Profiles {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"Beethro", "Gunthro", "Halph"}, names)
}

func TestLoadAll_KeepsSourceOrder(t *testing.T) {
	var calls atomic.Int32
	sources := []Source{
		&staticSource{name: "a", calls: &calls},
		&staticSource{name: "b", calls: &calls},
		&staticSource{name: "c", calls: &calls},
	}

	batches, err := NewImporter(nil, 3).LoadAll(context.Background(), sources...)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "a", batches[0].Source)
	assert.Equal(t, "b", batches[1].Source)
	assert.Equal(t, "c", batches[2].Source)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoadAll_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewImporter(nil, 0).LoadAll(context.Background(),
		&staticSource{name: "ok"},
		&staticSource{name: "broken", err: boom},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestBackupFileSource(t *testing.T) {
	p := testutil.NewProfile(t, "Beethro", testutil.Holds{5: {"A"}})
	path := testutil.WriteBackup(t, "laptop.db", p)

	src := BackupFile(path)
	assert.Equal(t, "laptop.db", src.Name())

	profiles, err := src.Profiles(testutil.Context(t))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, p.ID(), profiles[0].ID())
	testutil.AssertHolds(t, testutil.Holds{5: {"A"}}, profiles[0])
}

func TestBackupFileSource_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := NewImporter(nil, 1).Import(testutil.Context(t), BackupFile(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestImport_DatabaseAndBackup(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.Context(t)
	profiles := db.NewProfileRepository(pool)
	remaps := db.NewHoldRemapRepository(pool)

	stored := testutil.NewProfile(t, "Beethro", testutil.Holds{7: {"Z"}})
	require.NoError(t, profiles.Save(ctx, stored))

	laptop := testutil.NewProfile(t, "Beethro", testutil.Holds{5: {"A", "B"}})
	fresh := testutil.NewProfile(t, "Gunthro", testutil.Holds{5: {"C"}})
	path := testutil.WriteBackup(t, "laptop.db", laptop, fresh)
	require.NoError(t, remaps.Save(ctx, "laptop.db", map[uint32]uint32{5: 7}))

	res, err := NewImporter(remaps, 2).Import(ctx, Repository("db", profiles), BackupFile(path))
	require.NoError(t, err)
	require.Len(t, res.Profiles, 2)
	testutil.AssertHolds(t, testutil.Holds{7: {"A", "B", "Z"}}, res.Profiles[0])
	testutil.AssertHolds(t, testutil.Holds{7: {"C"}}, res.Profiles[1])

	require.NoError(t, db.NewSyncService(pool, profiles, remaps).SaveProfiles(ctx, res.Profiles))

	got, err := profiles.LoadByID(ctx, stored.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	testutil.AssertHolds(t, testutil.Holds{7: {"A", "B", "Z"}}, got)

	all, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
