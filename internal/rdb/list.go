package rdb

import (
	"fmt"

	"redisrepl/internal/byteio"
)

// decodeList dispatches the list-kind type tags to their logical
// [][]byte form, generalized from the teacher's parseList to also accept
// the legacy ziplist-backed encoding (type 10) and legacy quicklist
// (type 14) Dragonfly never writes.
func decodeList(r *byteio.Reader, typeTag int) (ListValue, error) {
	switch typeTag {
	case TypeList:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: list length: %w", err)
		}
		out := make([][]byte, n)
		for i := range out {
			s, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: list element %d: %w", i, err)
			}
			out[i] = s
		}
		return ListValue(out), nil

	case TypeListZiplist:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: list ziplist blob: %w", err)
		}
		items, err := decodeZiplist(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: list ziplist: %w", err)
		}
		return ListValue(items), nil

	case TypeListQuicklist:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: quicklist node count: %w", err)
		}
		blobs := make([][]byte, n)
		for i := range blobs {
			blobs[i], err = DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: quicklist node %d: %w", i, err)
			}
		}
		items, err := decodeQuicklistLegacy(blobs)
		if err != nil {
			return nil, err
		}
		return ListValue(items), nil

	case TypeListQuicklist2:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: quicklist2 node count: %w", err)
		}
		var out [][]byte
		for i := uint64(0); i < n; i++ {
			container, _, err := DecodeLength(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: quicklist2 node %d container: %w", i, err)
			}
			payload, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: quicklist2 node %d payload: %w", i, err)
			}
			items, err := decodeQuicklist2Node(container, payload)
			if err != nil {
				return nil, fmt.Errorf("rdb: quicklist2 node %d: %w", i, err)
			}
			out = append(out, items...)
		}
		return ListValue(out), nil

	default:
		return nil, fmt.Errorf("rdb: unsupported list type tag %d", typeTag)
	}
}
