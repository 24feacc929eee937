package rdb

import (
	"fmt"
	"strconv"

	"redisrepl/internal/byteio"
)

// decodeZSet dispatches the sorted-set type tags, grounded on the
// teacher's parseZSet. Unlike the teacher (Dragonfly always emits
// ZSET_2), this also supports the legacy RDB_TYPE_ZSET ASCII-double
// encoding spec.md §4.2 names.
func decodeZSet(r *byteio.Reader, typeTag int) (SortedSetValue, error) {
	switch typeTag {
	case TypeZSet:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset length: %w", err)
		}
		out := make([]ZMember, n)
		for i := range out {
			member, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: zset member %d: %w", i, err)
			}
			score, err := DecodeDouble(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: zset score %d: %w", i, err)
			}
			out[i] = ZMember{Member: member, Score: score}
		}
		return SortedSetValue(out), nil

	case TypeZSet2:
		n, _, err := DecodeLength(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset2 length: %w", err)
		}
		out := make([]ZMember, n)
		for i := range out {
			member, err := DecodeString(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: zset2 member %d: %w", i, err)
			}
			score, err := DecodeBinaryDouble(r)
			if err != nil {
				return nil, fmt.Errorf("rdb: zset2 score %d: %w", i, err)
			}
			out[i] = ZMember{Member: member, Score: score}
		}
		return SortedSetValue(out), nil

	case TypeZSetZiplist:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset ziplist blob: %w", err)
		}
		entries, err := decodeZiplist(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset ziplist: %w", err)
		}
		return pairsToMembers(entries)

	case TypeZSetListpack:
		blob, err := DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset listpack blob: %w", err)
		}
		entries, err := decodeListpack(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset listpack: %w", err)
		}
		return pairsToMembers(entries)

	default:
		return nil, fmt.Errorf("rdb: unsupported zset type tag %d", typeTag)
	}
}

// pairsToMembers folds a flat [member, score, member, score, ...] entry
// list (as ziplist/listpack entries decode to) into ZMembers. Scores in
// this legacy container form are ASCII, matching the teacher's
// strconv.ParseFloat fallback in parseZSetZiplist/parseZSetListpack.
func pairsToMembers(entries [][]byte) (SortedSetValue, error) {
	if len(entries)%2 != 0 {
		return nil, fmt.Errorf("rdb: zset container has odd entry count %d", len(entries))
	}
	out := make([]ZMember, 0, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		score, err := strconv.ParseFloat(string(entries[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("rdb: zset container score %q: %w", entries[i+1], err)
		}
		out = append(out, ZMember{Member: entries[i], Score: score})
	}
	return SortedSetValue(out), nil
}
