// Package cue holds the per-turn cue event queue produced by the room simulation.
// Consumers such as the challenge tracker only read it.
package cue

// ID identifies the kind of cue event.
type ID int

const (
	PlayerDied         ID = iota + 1 // player was killed this turn
	RoomConquered                    // last monster in the room cleared
	SecretRoomFound                  // entered a secret room for the first time
	LevelExited                      // stepped on a level exit
	ChallengeCompleted               // payload: challenge name (string)
	ScriptVarChanged                 // payload: variable name (string)
)

// Events is the set of cue events raised during one game turn.
// Payloads attached to an event are kept in the order they were raised.
type Events struct {
	raised map[ID][]any
	count  map[ID]int
}

// New creates an empty event set.
func New() *Events {
	return &Events{
		raised: make(map[ID][]any, 4),
		count:  make(map[ID]int, 4),
	}
}

// Add records an event with an optional payload (nil for none).
func (e *Events) Add(id ID, payload any) {
	e.count[id]++
	if payload != nil {
		e.raised[id] = append(e.raised[id], payload)
	}
}

// HasOccurred reports whether id was raised this turn.
func (e *Events) HasOccurred(id ID) bool {
	if e == nil {
		return false
	}
	return e.count[id] > 0
}

// Count returns how many times id was raised.
func (e *Events) Count(id ID) int {
	if e == nil {
		return 0
	}
	return e.count[id]
}

// Payloads returns a copy of the payloads attached to id.
func (e *Events) Payloads(id ID) []any {
	if e == nil {
		return nil
	}
	src := e.raised[id]
	if len(src) == 0 {
		return nil
	}
	out := make([]any, len(src))
	copy(out, src)
	return out
}

// Clear drops all events, ready for the next turn.
func (e *Events) Clear() {
	clear(e.raised)
	clear(e.count)
}
