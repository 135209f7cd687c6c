// Package packedvars implements the packed variable store: a typed key/value
// bag that is embedded into player profiles and persisted as a single binary blob.
// Script variables, challenge records and other per-player settings live here.
package packedvars

import (
	"encoding/binary"
	"maps"
	"slices"
	"strings"
)

// Type identifies the encoding of a stored value.
// Values are persisted in blobs, do not renumber.
type Type uint8

const (
	TypeInt   Type = 1 // int64, little-endian
	TypeText  Type = 2 // UTF-16LE, no terminator
	TypeBytes Type = 3 // opaque payload
)

// String returns a human-readable type name.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeText:
		return "text"
	case TypeBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

type entry struct {
	typ  Type
	data []byte
}

// Store is an in-memory packed variable store.
// Not safe for concurrent use: a store belongs to exactly one profile record.
type Store struct {
	vars map[string]entry
}

// New creates an empty store.
func New() *Store {
	return &Store{vars: make(map[string]entry, 16)}
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return len(s.vars)
}

// Has reports whether key holds any value (readable or not).
func (s *Store) Has(key string) bool {
	_, ok := s.vars[key]
	return ok
}

// TypeOf returns the stored type of key.
func (s *Store) TypeOf(key string) (Type, bool) {
	e, ok := s.vars[key]
	if !ok {
		return 0, false
	}
	return e.typ, true
}

// SetInt stores an integer value.
func (s *Store) SetInt(key string, v int64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	s.vars[key] = entry{typ: TypeInt, data: buf}
}

// LookupInt returns the integer stored under key.
// ok is false when the key is missing, holds another type, or is malformed.
func (s *Store) LookupInt(key string) (int64, bool) {
	e, ok := s.vars[key]
	if !ok || e.typ != TypeInt || len(e.data) != 8 {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(e.data)), true
}

// Int returns the integer stored under key, or def when there is no readable value.
func (s *Store) Int(key string, def int64) int64 {
	if v, ok := s.LookupInt(key); ok {
		return v
	}
	return def
}

// SetText stores a text value. Invalid UTF-8 sequences are replaced with U+FFFD.
func (s *Store) SetText(key, v string) {
	s.vars[key] = entry{typ: TypeText, data: EncodeText(v)}
}

// LookupText returns the text stored under key.
// ok is false when the key is missing, holds another type, or is malformed.
func (s *Store) LookupText(key string) (string, bool) {
	e, ok := s.vars[key]
	if !ok || e.typ != TypeText {
		return "", false
	}
	v, err := DecodeText(e.data)
	if err != nil {
		return "", false
	}
	return v, true
}

// Text returns the text stored under key, or def when there is no readable value.
func (s *Store) Text(key, def string) string {
	if v, ok := s.LookupText(key); ok {
		return v
	}
	return def
}

// SetBytes stores an opaque payload. The slice is copied.
func (s *Store) SetBytes(key string, b []byte) {
	s.vars[key] = entry{typ: TypeBytes, data: slices.Clone(b)}
}

// LookupBytes returns a copy of the payload stored under key.
func (s *Store) LookupBytes(key string) ([]byte, bool) {
	e, ok := s.vars[key]
	if !ok || e.typ != TypeBytes {
		return nil, false
	}
	return slices.Clone(e.data), true
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	delete(s.vars, key)
}

// DeletePrefix removes every key starting with prefix and returns how many were removed.
func (s *Store) DeletePrefix(prefix string) int {
	n := 0
	for k := range s.vars {
		if strings.HasPrefix(k, prefix) {
			delete(s.vars, k)
			n++
		}
	}
	return n
}

// Keys returns the sorted keys starting with prefix ("" for all keys).
func (s *Store) Keys(prefix string) []string {
	keys := make([]string, 0, len(s.vars))
	for k := range s.vars {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Clear removes all keys.
func (s *Store) Clear() {
	clear(s.vars)
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{vars: make(map[string]entry, len(s.vars))}
	for k, e := range s.vars {
		c.vars[k] = entry{typ: e.typ, data: slices.Clone(e.data)}
	}
	return c
}

// Equal reports whether both stores hold the same keys with identical payloads.
func (s *Store) Equal(other *Store) bool {
	return maps.EqualFunc(s.vars, other.vars, func(a, b entry) bool {
		return a.typ == b.typ && slices.Equal(a.data, b.data)
	})
}
