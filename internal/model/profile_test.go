package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/holdstate/internal/challenge"
	"github.com/udisondev/holdstate/internal/packedvars"
	"github.com/udisondev/holdstate/internal/scriptvars"
)

func TestNewPlayerProfile(t *testing.T) {
	p, err := NewPlayerProfile("Beethro")
	require.NoError(t, err)
	assert.Equal(t, "Beethro", p.Name())
	assert.NotEqual(t, [16]byte{}, [16]byte(p.ID()))
	assert.Empty(t, p.Challenges().HoldIDs())

	_, err = NewPlayerProfile("")
	assert.Error(t, err)
}

func TestPlayerProfile_PackLoad(t *testing.T) {
	p, err := NewPlayerProfile("Beethro")
	require.NoError(t, err)
	p.Challenges().Add(3, "No Scroll", "Speed")
	require.NoError(t, p.ScriptVars().Apply("keys", scriptvars.Assign, scriptvars.Int(4)))

	blob, err := p.Pack()
	require.NoError(t, err)

	saved := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := LoadPlayerProfile(p.ID(), p.Name(), blob, saved)
	require.NoError(t, err)

	assert.Equal(t, p.ID(), got.ID())
	assert.Equal(t, saved, got.UpdatedAt())
	assert.True(t, p.Challenges().Equal(got.Challenges()))
	assert.Equal(t, scriptvars.Int(4), got.ScriptVars().Get("keys"))
}

func TestLoadPlayerProfile_CorruptBlob(t *testing.T) {
	p, err := NewPlayerProfile("Halph")
	require.NoError(t, err)

	_, err = LoadPlayerProfile(p.ID(), "Halph", []byte("garbage"), time.Now())
	assert.ErrorIs(t, err, packedvars.ErrCorrupt)
}

func TestLoadPlayerProfile_SkipsBadChallengeEntry(t *testing.T) {
	store := packedvars.New()
	good := challenge.New()
	good.Add(9, "Fine")
	good.Serialize(store)
	store.SetBytes(challenge.KeyPrefix+"8", []byte{1})

	blob, err := store.MarshalBinary()
	require.NoError(t, err)

	p, err := LoadPlayerProfile([16]byte{1}, "Gunthro", blob, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []uint32{9}, p.Challenges().HoldIDs())
}

func TestPlayerProfile_Absorb(t *testing.T) {
	a, err := NewPlayerProfile("Beethro")
	require.NoError(t, err)
	b, err := NewPlayerProfile("Beethro")
	require.NoError(t, err)

	a.Challenges().Add(1, "A")
	b.Challenges().Add(1, "B")
	b.Challenges().Add(2, "C")
	a.ScriptVars().Set("x", scriptvars.Int(1))
	b.ScriptVars().Set("x", scriptvars.Int(2))
	b.ScriptVars().Set("y", scriptvars.Text("hi"))

	conflicts := a.Absorb(b)

	assert.Equal(t, []string{"x"}, conflicts)
	assert.Equal(t, []string{"A", "B"}, a.Challenges().Get(1))
	assert.Equal(t, []string{"C"}, a.Challenges().Get(2))
	assert.Equal(t, scriptvars.Int(1), a.ScriptVars().Get("x"))
	assert.Equal(t, scriptvars.Text("hi"), a.ScriptVars().Get("y"))
}
