package rdb

import "fmt"

// decodeQuicklistLegacy handles RDB_TYPE_LIST_QUICKLIST (type 14): length N
// then N strings, each itself a ziplist blob, concatenated in order.
// Dragonfly's RDB emitter never writes this legacy form so the teacher has
// no analogue; written fresh in quicklist2's style.
func decodeQuicklistLegacy(entries [][]byte) ([][]byte, error) {
	var out [][]byte
	for i, blob := range entries {
		items, err := decodeZiplist(blob)
		if err != nil {
			return nil, fmt.Errorf("rdb: quicklist node %d: %w", i, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// decodeQuicklist2Node decodes one RDB_TYPE_LIST_QUICKLIST_2 node: a
// container-type tag (1=plain single element, 2=packed listpack), then the
// node payload. Lifted from the teacher's parseListQuicklist2.
func decodeQuicklist2Node(container uint64, payload []byte) ([][]byte, error) {
	switch container {
	case containerPlain:
		return [][]byte{payload}, nil
	case containerPacked:
		return decodeListpack(payload)
	default:
		return nil, fmt.Errorf("rdb: unsupported quicklist node container %d", container)
	}
}
