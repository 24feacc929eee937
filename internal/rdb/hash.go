package rdb

import (
	"fmt"

	"redisrepl/internal/byteio"
)

// decodeHash dispatches the hash-kind type tags, grounded on the
// teacher's parseHash. Adds zipmap (type 9, no teacher analogue) and the
// hash-field-TTL listpack variants (types 23 and 25, pre-GA and GA) spec.md
// §4.4 lists; per-field TTLs are decoded and discarded since spec.md's
// Hash shape is a plain field/value mapping with no field-level expiry.
// The metadata-encoded variants (types 22 and 24) use a different,
// non-listpack wire shape and are rejected by the caller instead of routed
// here.
func decodeHash(r *byteio.Reader, typeTag int) (HashValue, error) {
	switch typeTag {
	case TypeHash:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash length: %w", err)
		}
		out := make(map[string][]byte, n)
		for i := uint64(0); i < n; i++ {
			field, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: hash field %d: %w", i, err)
			}
			value, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: hash value %d: %w", i, err)
			}
			out[string(field)] = value
		}
		return HashValue(out), nil

	case TypeHashZiplist:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash ziplist blob: %w", err)
		}
		entries, err := decodeZiplist(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash ziplist: %w", err)
		}
		return pairsToHash(entries)

	case TypeHashListpack:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash listpack blob: %w", err)
		}
		entries, err := decodeListpack(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash listpack: %w", err)
		}
		return pairsToHash(entries)

	case TypeHashListpackEx, TypeHashListpackExPreGA:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash listpack-ex blob: %w", err)
		}
		entries, err := decodeListpack(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash listpack-ex: %w", err)
		}
		if len(entries)%3 != 0 {
			return nil, fmt.Errorf("rdb: hash listpack-ex has non-triple entry count %d", len(entries))
		}
		out := make(map[string][]byte, len(entries)/3)
		for i := 0; i < len(entries); i += 3 {
			out[string(entries[i])] = entries[i+1] // entries[i+2] is the per-field TTL, discarded
		}
		return HashValue(out), nil

	case TypeHashZipmap:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash zipmap blob: %w", err)
		}
		out, err := decodeZipmap(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: hash zipmap: %w", err)
		}
		return HashValue(out), nil

	default:
		return nil, fmt.Errorf("rdb: unsupported hash type tag %d", typeTag)
	}
}

func pairsToHash(entries [][]byte) (HashValue, error) {
	if len(entries)%2 != 0 {
		return nil, fmt.Errorf("rdb: hash container has odd entry count %d", len(entries))
	}
	out := make(map[string][]byte, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		out[string(entries[i])] = entries[i+1]
	}
	return HashValue(out), nil
}
