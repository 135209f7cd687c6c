package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/holdstate/internal/model"
)

func newSyncService(t *testing.T) (*SyncService, *ProfileRepository, *HoldRemapRepository) {
	t.Helper()
	pool := setupTestDB(t)
	profiles := NewProfileRepository(pool)
	remaps := NewHoldRemapRepository(pool)
	return NewSyncService(pool, profiles, remaps), profiles, remaps
}

func TestSyncService_SaveProfiles(t *testing.T) {
	svc, profiles, _ := newSyncService(t)
	ctx := context.Background()

	a, err := model.NewPlayerProfile("Beethro")
	require.NoError(t, err)
	b, err := model.NewPlayerProfile("Gunthro")
	require.NoError(t, err)
	b.Challenges().Add(3, "Slayer")

	require.NoError(t, svc.SaveProfiles(ctx, []*model.PlayerProfile{a, b}))
	require.NoError(t, svc.SaveProfiles(ctx, nil))

	all, err := profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Beethro", all[0].Name())
	assert.Equal(t, []string{"Slayer"}, all[1].Challenges().Get(3))
}

func TestSyncService_ApplyRemap(t *testing.T) {
	svc, profiles, remaps := newSyncService(t)
	ctx := context.Background()

	moved, err := model.NewPlayerProfile("Beethro")
	require.NoError(t, err)
	moved.Challenges().Add(5, "A", "B")
	moved.Challenges().Add(7, "Z")

	untouched, err := model.NewPlayerProfile("Halph")
	require.NoError(t, err)
	untouched.Challenges().Add(9, "Q")

	require.NoError(t, svc.SaveProfiles(ctx, []*model.PlayerProfile{moved, untouched}))

	changed, err := svc.ApplyRemap(ctx, "import-1", map[uint32]uint32{5: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := profiles.LoadByID(ctx, moved.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []uint32{7}, got.Challenges().HoldIDs())
	assert.Equal(t, []string{"A", "B", "Z"}, got.Challenges().Get(7))

	recorded, err := remaps.Load(ctx, "import-1")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]uint32{5: 7}, recorded)
}

func TestSyncService_ApplyRemapRejectsZero(t *testing.T) {
	svc, profiles, remaps := newSyncService(t)
	ctx := context.Background()

	p, err := model.NewPlayerProfile("Beethro")
	require.NoError(t, err)
	p.Challenges().Add(5, "A")
	require.NoError(t, profiles.Save(ctx, p))

	_, err = svc.ApplyRemap(ctx, "bad", map[uint32]uint32{5: 0})
	require.Error(t, err)

	recorded, err := remaps.Load(ctx, "bad")
	require.NoError(t, err)
	assert.Empty(t, recorded)

	got, err := profiles.LoadByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Challenges().Get(5))
}
