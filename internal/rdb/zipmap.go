package rdb

import (
	"encoding/binary"
	"fmt"
)

// decodeZipmap parses the legacy pre-ziplist hash encoding (RDB type 9):
// [zmlen:1]([keylen][key][vallen][free][value])*[0xFF]. Only value lengths
// carry a trailing one-byte free-space count (padding left over from an
// in-place update); key lengths never do. The teacher has no zipmap
// support (Dragonfly never emits it); grounded on the
// 8090Lambert-go-redis-parser reference's loadZipMap/loadZipmapItemLength,
// rewritten in this decoder's style.
func decodeZipmap(data []byte) (map[string][]byte, error) {
	if len(data) == 0 {
		return map[string][]byte{}, nil
	}

	offset := 1 // skip zmlen, which is only an unreliable hint above length 253
	fields := map[string][]byte{}
	for {
		if offset >= len(data) {
			return nil, fmt.Errorf("rdb: zipmap missing terminator")
		}
		if data[offset] == 0xFF {
			return fields, nil
		}

		keyLen, next, err := zipmapItemLength(data, offset)
		if err != nil {
			return nil, fmt.Errorf("rdb: zipmap key length: %w", err)
		}
		offset = next
		if offset+keyLen > len(data) {
			return nil, fmt.Errorf("rdb: zipmap key truncated")
		}
		key := data[offset : offset+keyLen]
		offset += keyLen

		valLen, next, err := zipmapItemLength(data, offset)
		if err != nil {
			return nil, fmt.Errorf("rdb: zipmap value length: %w", err)
		}
		offset = next
		if offset >= len(data) {
			return nil, fmt.Errorf("rdb: zipmap missing free-byte count")
		}
		free := int(data[offset])
		offset++

		if offset+valLen > len(data) {
			return nil, fmt.Errorf("rdb: zipmap value truncated")
		}
		value := data[offset : offset+valLen]
		offset += valLen + free

		fields[string(key)] = value
	}
}

// zipmapItemLength reads one length prefix starting at data[offset] and
// returns the offset just past it (but before any free-byte count, which
// only follows value lengths and is handled by the caller).
func zipmapItemLength(data []byte, offset int) (length int, next int, err error) {
	if offset >= len(data) {
		return 0, 0, fmt.Errorf("truncated")
	}
	b := data[offset]
	offset++
	switch b {
	case 253:
		if offset+4 > len(data) {
			return 0, 0, fmt.Errorf("truncated 32-bit length")
		}
		length = int(binary.BigEndian.Uint32(data[offset : offset+4]))
		return length, offset + 4, nil
	case 254:
		return 0, 0, fmt.Errorf("invalid zipmap item length marker")
	case 255:
		return 0, 0, fmt.Errorf("unexpected zipmap terminator mid-item")
	default:
		return int(b), offset, nil
	}
}
