package packedvars

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ErrCorrupt is returned when a blob cannot be decoded.
var ErrCorrupt = errors.New("packedvars: corrupt data")

// blobMagic prefixes every marshaled store.
var blobMagic = [4]byte{'P', 'V', 'A', 'R'}

const blobVersion = 1

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeText converts s to UTF-16LE. Invalid UTF-8 is replaced with U+FFFD first.
func EncodeText(s string) []byte {
	s = strings.ToValidUTF8(s, "�")
	// на валидном UTF-8 кодер не возвращает ошибок
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return b
}

// DecodeText converts UTF-16LE bytes to a string.
func DecodeText(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 length %d", ErrCorrupt, len(b))
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(out), nil
}

// MarshalBinary encodes the store. Keys are written in sorted order so equal
// stores produce identical blobs.
//
// Layout: magic[4] version[1] count[u32], then per entry
// keyLen[u16] key[keyLen] type[1] dataLen[u32] data[dataLen]. All integers little-endian.
func (s *Store) MarshalBinary() ([]byte, error) {
	size := len(blobMagic) + 1 + 4
	for k, e := range s.vars {
		size += 2 + len(k) + 1 + 4 + len(e.data)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, blobMagic[:]...)
	buf = append(buf, blobVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.vars)))

	for _, k := range s.Keys("") {
		e := s.vars[k]
		if len(k) > math.MaxUint16 {
			return nil, fmt.Errorf("key %.32q... too long (%d bytes)", k, len(k))
		}
		if uint64(len(e.data)) > math.MaxUint32 {
			return nil, fmt.Errorf("value of %q too large (%d bytes)", k, len(e.data))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(k)))
		buf = append(buf, k...)
		buf = append(buf, byte(e.typ))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.data)))
		buf = append(buf, e.data...)
	}
	return buf, nil
}

// UnmarshalBinary replaces the store contents with the decoded blob.
// An empty blob yields an empty store. On error the store is left unchanged.
func (s *Store) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		if s.vars == nil {
			s.vars = make(map[string]entry)
		}
		s.Clear()
		return nil
	}

	r := reader{buf: data}
	magic := r.next(len(blobMagic))
	if magic == nil || [4]byte(magic) != blobMagic {
		return fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	ver := r.next(1)
	if ver == nil || ver[0] != blobVersion {
		return fmt.Errorf("%w: unsupported version", ErrCorrupt)
	}
	count, ok := r.u32()
	if !ok {
		return fmt.Errorf("%w: truncated header", ErrCorrupt)
	}

	vars := make(map[string]entry, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		keyLen, ok := r.u16()
		if !ok {
			return fmt.Errorf("%w: entry %d: truncated key length at offset %d", ErrCorrupt, i, r.off)
		}
		key := r.next(int(keyLen))
		if key == nil {
			return fmt.Errorf("%w: entry %d: truncated key at offset %d", ErrCorrupt, i, r.off)
		}
		typ := r.next(1)
		if typ == nil {
			return fmt.Errorf("%w: entry %d (%q): missing type", ErrCorrupt, i, key)
		}
		dataLen, ok := r.u32()
		if !ok {
			return fmt.Errorf("%w: entry %d (%q): truncated length", ErrCorrupt, i, key)
		}
		payload := r.next(int(dataLen))
		if payload == nil && dataLen > 0 {
			return fmt.Errorf("%w: entry %d (%q): truncated payload", ErrCorrupt, i, key)
		}
		// Payload is not validated here: unreadable values are reported as missing by lookups.
		vars[string(key)] = entry{typ: Type(typ[0]), data: append([]byte(nil), payload...)}
	}
	if r.off != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-r.off)
	}

	s.vars = vars
	return nil
}

// Unmarshal decodes a blob into a new store.
func Unmarshal(data []byte) (*Store, error) {
	s := New()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) next(n int) []byte {
	if n < 0 || r.off+n > len(r.buf) {
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u16() (uint16, bool) {
	b := r.next(2)
	if b == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (r *reader) u32() (uint32, bool) {
	b := r.next(4)
	if b == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}
