package rdb

import (
	"encoding/binary"
	"fmt"

	"redisrepl/internal/byteio"
)

// DecodeLength reads the RDB length encoding: the top two bits of the
// first byte select a scheme (spec.md §4.2). special is true when the
// remaining 6 bits name a string-encoding subtype rather than a length.
func DecodeLength(r *byteio.Reader) (length uint64, special bool, err error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, false, fmt.Errorf("rdb: decode length: %w", err)
	}

	switch first >> 6 {
	case 0b00:
		return uint64(first & 0x3F), false, nil

	case 0b01:
		next, err := r.ReadByte()
		if err != nil {
			return 0, false, fmt.Errorf("rdb: decode 14-bit length: %w", err)
		}
		return uint64(first&0x3F)<<8 | uint64(next), false, nil

	case 0b10:
		switch first & 0x3F {
		case 0:
			buf, err := r.ReadExact(4)
			if err != nil {
				return 0, false, fmt.Errorf("rdb: decode 32-bit length: %w", err)
			}
			return uint64(binary.BigEndian.Uint32(buf)), false, nil
		case 1:
			buf, err := r.ReadExact(8)
			if err != nil {
				return 0, false, fmt.Errorf("rdb: decode 64-bit length: %w", err)
			}
			return binary.BigEndian.Uint64(buf), false, nil
		default:
			return 0, false, fmt.Errorf("rdb: unsupported length scheme 10 with low bits %d", first&0x3F)
		}

	default: // 0b11
		return uint64(first & 0x3F), true, nil
	}
}
