package rdb

import (
	"fmt"

	"redisrepl/internal/byteio"
)

// decodeSet dispatches the set-kind type tags, grounded on the teacher's
// parseSet.
func decodeSet(r *byteio.Reader, typeTag int) (SetValue, error) {
	switch typeTag {
	case TypeSet:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: set length: %w", err)
		}
		out := make([][]byte, n)
		for i := range out {
			s, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: set member %d: %w", i, err)
			}
			out[i] = s
		}
		return SetValue(out), nil

	case TypeSetIntset:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: set intset blob: %w", err)
		}
		members, err := decodeIntset(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: set intset: %w", err)
		}
		return SetValue(members), nil

	case TypeSetListpack:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: set listpack blob: %w", err)
		}
		members, err := decodeListpack(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: set listpack: %w", err)
		}
		return SetValue(members), nil

	default:
		return nil, fmt.Errorf("rdb: unsupported set type tag %d", typeTag)
	}
}
