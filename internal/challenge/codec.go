package challenge

import (
	"encoding/binary"
	"fmt"

	"github.com/udisondev/holdstate/internal/packedvars"
)

// Per-hold payload: count[u32], then for each name len[u32] (bytes) + UTF-16LE text.
// Integers little-endian.

func encodeNames(names []string) []byte {
	buf := binary.LittleEndian.AppendUint32(nil, uint32(len(names)))
	for _, name := range names {
		text := packedvars.EncodeText(name)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(text)))
		buf = append(buf, text...)
	}
	return buf
}

func decodeNames(b []byte) ([]string, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("truncated header (%d bytes)", len(b))
	}
	count := binary.LittleEndian.Uint32(b)
	b = b[4:]

	// каждое имя занимает минимум 4 байта
	if uint64(count)*4 > uint64(len(b)) {
		return nil, fmt.Errorf("count %d exceeds payload", count)
	}

	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < 4 {
			return nil, fmt.Errorf("name %d: truncated length", i)
		}
		n := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(n) > uint64(len(b)) {
			return nil, fmt.Errorf("name %d: truncated text", i)
		}
		name, err := packedvars.DecodeText(b[:n])
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		names = append(names, name)
		b = b[n:]
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(b))
	}
	return names, nil
}
