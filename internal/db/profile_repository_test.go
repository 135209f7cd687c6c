package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/holdstate/internal/model"
	"github.com/udisondev/holdstate/internal/scriptvars"
)

func TestProfileRepository_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewProfileRepository(pool)
	ctx := context.Background()

	p, err := model.NewPlayerProfile("Beethro")
	require.NoError(t, err)
	p.Challenges().Add(12, "Untouched", "Speedy")
	p.ScriptVars().Set("deaths", scriptvars.Int(3))

	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.LoadByID(ctx, p.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Beethro", got.Name())
	assert.True(t, p.Challenges().Equal(got.Challenges()))
	assert.Equal(t, scriptvars.Int(3), got.ScriptVars().Get("deaths"))

	// Повторное сохранение — upsert
	p.Challenges().Add(12, "Third")
	require.NoError(t, repo.Save(ctx, p))
	got, err = repo.LoadByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Speedy", "Third", "Untouched"}, got.Challenges().Get(12))
}

func TestProfileRepository_LoadMissing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewProfileRepository(pool)

	got, err := repo.LoadByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileRepository_ListSkipsCorrupt(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewProfileRepository(pool)
	ctx := context.Background()

	p, err := model.NewPlayerProfile("Halph")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	_, err = pool.Exec(ctx,
		`INSERT INTO player_profiles (id, name, vars) VALUES ($1, $2, $3)`,
		uuid.New(), "Broken", []byte("not a blob"))
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Halph", all[0].Name())

	byName, err := repo.LoadByName(ctx, "Broken")
	require.NoError(t, err)
	assert.Empty(t, byName)
}

func TestProfileRepository_Delete(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewProfileRepository(pool)
	ctx := context.Background()

	p, err := model.NewPlayerProfile("Stalwart")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID()))

	got, err := repo.LoadByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHoldRemapRepository_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewHoldRemapRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "import-1", map[uint32]uint32{5: 7, 6: 8}))
	require.NoError(t, repo.Save(ctx, "import-2", map[uint32]uint32{1: 2}))

	got, err := repo.Load(ctx, "import-1")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]uint32{5: 7, 6: 8}, got)

	// Save полностью заменяет карту источника
	require.NoError(t, repo.Save(ctx, "import-1", map[uint32]uint32{9: 10}))
	got, err = repo.Load(ctx, "import-1")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]uint32{9: 10}, got)

	got, err = repo.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, repo.Save(ctx, "bad", map[uint32]uint32{0: 1}))
}
