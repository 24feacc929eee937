package rdb

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"redisrepl/internal/byteio"
	"redisrepl/internal/lzf"
)

// DecodeString reads one RDB-encoded string: a plain length-prefixed byte
// run, a special integer encoding formatted as decimal ASCII, or an
// LZF-compressed payload. Grounded on spec.md §4.2 and the teacher's
// readStringFull/readLZFString pair, generalized to return []byte instead
// of string. Every returned slice is freshly allocated and owned by the
// caller, so strings decoded back to back (a key and its value, list
// elements, hash fields) never share memory.
func DecodeString(r *byteio.Reader) ([]byte, error) {
	length, special, err := DecodeLength(r)
	if err != nil {
		return nil, fmt.Errorf("rdb: decode string length: %w", err)
	}
	if !special {
		buf, err := r.ReadExact(int(length))
		if err != nil {
			return nil, err
		}
		// ReadExact may return the Reader's reused scratch buffer, which
		// the next read overwrites.
		return append([]byte(nil), buf...), nil
	}

	switch length {
	case encInt8:
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rdb: decode int8 string: %w", err)
		}
		return []byte(strconv.Itoa(int(int8(b)))), nil

	case encInt16:
		buf, err := r.ReadExact(2)
		if err != nil {
			return nil, fmt.Errorf("rdb: decode int16 string: %w", err)
		}
		return []byte(strconv.Itoa(int(int16(binary.LittleEndian.Uint16(buf))))), nil

	case encInt32:
		buf, err := r.ReadExact(4)
		if err != nil {
			return nil, fmt.Errorf("rdb: decode int32 string: %w", err)
		}
		return []byte(strconv.Itoa(int(int32(binary.LittleEndian.Uint32(buf))))), nil

	case encLZF:
		clen, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: decode LZF compressed length: %w", err)
		}
		ulen, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: decode LZF uncompressed length: %w", err)
		}
		compressed, err := r.ReadExact(int(clen))
		if err != nil {
			return nil, fmt.Errorf("rdb: read LZF payload: %w", err)
		}
		out, err := lzf.Decompress(compressed, int(ulen))
		if err != nil {
			return nil, fmt.Errorf("rdb: LZF decompress: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("rdb: unsupported string special encoding %d", length)
	}
}

// DecodeDouble reads a sorted-set score in the legacy tagged/ASCII
// encoding used by RDB_TYPE_ZSET and RDB_TYPE_ZSET_ZIPLIST.
func DecodeDouble(r *byteio.Reader) (float64, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("rdb: decode double tag: %w", err)
	}
	switch tag {
	case 253: // 0xFD
		return math.NaN(), nil
	case 254: // 0xFE
		return math.Inf(1), nil
	case 255: // 0xFF
		return math.Inf(-1), nil
	}

	buf, err := r.ReadExact(int(tag))
	if err != nil {
		return 0, fmt.Errorf("rdb: read ASCII double (%d bytes): %w", tag, err)
	}
	v, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0, fmt.Errorf("rdb: parse ASCII double %q: %w", buf, err)
	}
	return v, nil
}

// DecodeBinaryDouble reads the 8-byte little-endian IEEE-754 score used by
// RDB_TYPE_ZSET_2 and listpack-encoded sorted sets.
func DecodeBinaryDouble(r *byteio.Reader) (float64, error) {
	buf, err := r.ReadExact(8)
	if err != nil {
		return 0, fmt.Errorf("rdb: decode binary double: %w", err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}
