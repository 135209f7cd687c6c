package model

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/holdstate/internal/challenge"
	"github.com/udisondev/holdstate/internal/packedvars"
	"github.com/udisondev/holdstate/internal/scriptvars"
)

// PlayerProfile is a player's persisted record.
// All progress lives in a packed variable store; the challenge record is kept
// decoded in memory and folded back into the store by Pack.
//
// Not safe for concurrent use: one profile is owned by one session at a time.
type PlayerProfile struct {
	id         uuid.UUID
	name       string
	vars       *packedvars.Store
	challenges *challenge.Challenges
	updatedAt  time.Time
}

// NewPlayerProfile creates an empty profile with a fresh ID.
func NewPlayerProfile(name string) (*PlayerProfile, error) {
	if name == "" {
		return nil, fmt.Errorf("profile name must not be empty")
	}
	return &PlayerProfile{
		id:         uuid.New(),
		name:       name,
		vars:       packedvars.New(),
		challenges: challenge.New(),
		updatedAt:  time.Now(),
	}, nil
}

// LoadPlayerProfile restores a profile from its packed blob.
// A structurally corrupt blob is an error. Individual unreadable challenge
// entries are skipped and logged so the rest of the profile still loads.
func LoadPlayerProfile(id uuid.UUID, name string, blob []byte, updatedAt time.Time) (*PlayerProfile, error) {
	vars, err := packedvars.Unmarshal(blob)
	if err != nil {
		return nil, fmt.Errorf("unpacking profile %s: %w", id, err)
	}

	challenges, err := challenge.FromStore(vars)
	if err != nil {
		slog.Warn("profile loaded with skipped challenge entries",
			"profileID", id,
			"profile", name,
			"error", err)
	}

	return &PlayerProfile{
		id:         id,
		name:       name,
		vars:       vars,
		challenges: challenges,
		updatedAt:  updatedAt,
	}, nil
}

// ID returns the profile identifier.
func (p *PlayerProfile) ID() uuid.UUID { return p.id }

// Name returns the player name.
func (p *PlayerProfile) Name() string { return p.name }

// UpdatedAt returns the last save time.
func (p *PlayerProfile) UpdatedAt() time.Time { return p.updatedAt }

// Touch sets the save time.
func (p *PlayerProfile) Touch(t time.Time) { p.updatedAt = t }

// Vars returns the packed variable store backing the profile.
func (p *PlayerProfile) Vars() *packedvars.Store { return p.vars }

// ScriptVars returns the custom script variables held in the profile.
func (p *PlayerProfile) ScriptVars() *scriptvars.Vars {
	return scriptvars.NewVars(p.vars)
}

// Challenges returns the in-memory challenge record.
func (p *PlayerProfile) Challenges() *challenge.Challenges { return p.challenges }

// Pack serializes challenges into the store and returns the profile blob.
func (p *PlayerProfile) Pack() ([]byte, error) {
	p.challenges.Serialize(p.vars)
	blob, err := p.vars.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("packing profile %s: %w", p.id, err)
	}
	return blob, nil
}

// Absorb folds another snapshot of the same player into p.
// Challenges are unioned; custom script variables missing here are copied.
// Returns the names of script variables whose values disagree (p's value is kept).
func (p *PlayerProfile) Absorb(other *PlayerProfile) []string {
	p.challenges.Merge(other.challenges)
	return p.ScriptVars().CopyMissing(other.ScriptVars())
}
