package rdb

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"redisrepl/internal/byteio"
)

// stream entry flags, per Redis's t_stream.c.
const (
	streamItemFlagDeleted    = 1 << 0
	streamItemFlagSameFields = 1 << 1
)

// decodeStream fully materializes a stream value for types 15/19/21,
// generalizing the teacher's parseStream — which the teacher itself marks
// best-effort and explicitly skips consumer groups — into a decoder that
// reconstructs group name, last-delivered ID, the pending-entries-list
// with delivery time/count, and each consumer's own PEL, per spec.md §3's
// "consumer-group state" requirement.
func decodeStream(r *byteio.Reader, typeTag int) (StreamValue, error) {
	numListpacks, _, err := DecodeLength(r)
	if err != nil {
		return StreamValue{}, fmt.Errorf("rdb: stream listpack count: %w", err)
	}

	var entries []StreamEntry
	for i := uint64(0); i < numListpacks; i++ {
		masterID, err := readRawStreamID(r)
		if err != nil {
			return StreamValue{}, fmt.Errorf("rdb: stream node %d master id: %w", i, err)
		}
		blob, err := DecodeString(r)
		if err != nil {
			return StreamValue{}, fmt.Errorf("rdb: stream node %d listpack: %w", i, err)
		}
		raw, err := decodeListpack(blob)
		if err != nil {
			return StreamValue{}, fmt.Errorf("rdb: stream node %d: %w", i, err)
		}
		nodeEntries, err := decodeStreamListpackEntries(masterID, raw)
		if err != nil {
			return StreamValue{}, fmt.Errorf("rdb: stream node %d entries: %w", i, err)
		}
		entries = append(entries, nodeEntries...)
	}

	length, _, err := DecodeLength(r)
	if err != nil {
		return StreamValue{}, fmt.Errorf("rdb: stream length: %w", err)
	}
	lastMs, _, err := DecodeLength(r)
	if err != nil {
		return StreamValue{}, fmt.Errorf("rdb: stream last id ms: %w", err)
	}
	lastSeq, _, err := DecodeLength(r)
	if err != nil {
		return StreamValue{}, fmt.Errorf("rdb: stream last id seq: %w", err)
	}

	if typeTag >= TypeStreamListpacks2 {
		// first_id, max_deleted_entry_id, entries_added: not surfaced on
		// StreamValue (spec.md's logical shape has no field for them) but
		// must still be consumed to keep the stream aligned.
		for i := 0; i < 5; i++ {
			if _, _, err := DecodeLength(r); err != nil {
				return StreamValue{}, fmt.Errorf("rdb: stream v2 metadata field %d: %w", i, err)
			}
		}
	}

	numGroups, _, err := DecodeLength(r)
	if err != nil {
		return StreamValue{}, fmt.Errorf("rdb: stream group count: %w", err)
	}

	groups := make([]StreamGroup, 0, numGroups)
	for g := uint64(0); g < numGroups; g++ {
		group, err := decodeStreamGroup(r, typeTag)
		if err != nil {
			return StreamValue{}, fmt.Errorf("rdb: stream group %d: %w", g, err)
		}
		groups = append(groups, group)
	}

	return StreamValue{
		Entries: entries,
		Length:  length,
		LastID:  StreamID{Ms: lastMs, Seq: lastSeq},
		Groups:  groups,
	}, nil
}

func decodeStreamGroup(r *byteio.Reader, typeTag int) (StreamGroup, error) {
	name, err := DecodeString(r)
	if err != nil {
		return StreamGroup{}, fmt.Errorf("name: %w", err)
	}
	lastMs, _, err := DecodeLength(r)
	if err != nil {
		return StreamGroup{}, fmt.Errorf("last-delivered ms: %w", err)
	}
	lastSeq, _, err := DecodeLength(r)
	if err != nil {
		return StreamGroup{}, fmt.Errorf("last-delivered seq: %w", err)
	}

	var entriesRead int64
	if typeTag >= TypeStreamListpacks2 {
		v, _, err := DecodeLength(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("entries-read: %w", err)
		}
		entriesRead = int64(v)
	}

	pelSize, _, err := DecodeLength(r)
	if err != nil {
		return StreamGroup{}, fmt.Errorf("pel size: %w", err)
	}
	pel := make([]PendingEntry, pelSize)
	for i := range pel {
		id, err := readRawStreamID(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("pel entry %d id: %w", i, err)
		}
		deliveryTime, err := readMillis(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("pel entry %d delivery time: %w", i, err)
		}
		deliveryCount, _, err := DecodeLength(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("pel entry %d delivery count: %w", i, err)
		}
		pel[i] = PendingEntry{ID: id, DeliveryTime: deliveryTime, DeliveryCount: deliveryCount}
	}

	numConsumers, _, err := DecodeLength(r)
	if err != nil {
		return StreamGroup{}, fmt.Errorf("consumer count: %w", err)
	}
	consumers := make([]StreamConsumer, numConsumers)
	for c := range consumers {
		cname, err := DecodeString(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("consumer %d name: %w", c, err)
		}
		seenTime, err := readMillis(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("consumer %d seen time: %w", c, err)
		}
		if typeTag == TypeStreamListpacks3 {
			// active_time, present only from type 3 onward; not tracked on
			// StreamConsumer, but must be consumed off the wire.
			if _, err := readMillis(r); err != nil {
				return StreamGroup{}, fmt.Errorf("consumer %d active time: %w", c, err)
			}
		}

		pelCount, _, err := DecodeLength(r)
		if err != nil {
			return StreamGroup{}, fmt.Errorf("consumer %d pel count: %w", c, err)
		}
		consumerPEL := make([]StreamID, pelCount)
		for i := range consumerPEL {
			id, err := readRawStreamID(r)
			if err != nil {
				return StreamGroup{}, fmt.Errorf("consumer %d pel entry %d: %w", c, i, err)
			}
			consumerPEL[i] = id
		}
		consumers[c] = StreamConsumer{Name: cname, SeenTime: seenTime, PEL: consumerPEL}
	}

	// Attach each consumer's PEL entries to the matching global PEL row's
	// consumer field, matching the real format where the consumer PEL only
	// references IDs already present in the group-wide PEL.
	for _, consumer := range consumers {
		for _, id := range consumer.PEL {
			for i := range pel {
				if pel[i].ID == id {
					pel[i].Consumer = consumer.Name
				}
			}
		}
	}

	return StreamGroup{
		Name:          name,
		LastDelivered: StreamID{Ms: lastMs, Seq: lastSeq},
		EntriesRead:   entriesRead,
		PEL:           pel,
		Consumers:     consumers,
	}, nil
}

// decodeStreamListpackEntries unpacks one stream listpack node: a header
// of [count][deleted][num-master-fields][field...][0], followed by that
// many entries, each [flags][ms-diff][seq-diff][values-or-field/value
// pairs][lp-count].
func decodeStreamListpackEntries(master StreamID, raw [][]byte) ([]StreamEntry, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("stream listpack header too short")
	}
	idx := 0
	count, err := parseStreamInt(raw[idx])
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	idx++
	deleted, err := parseStreamInt(raw[idx])
	if err != nil {
		return nil, fmt.Errorf("deleted count: %w", err)
	}
	idx++
	numFields, err := parseStreamInt(raw[idx])
	if err != nil {
		return nil, fmt.Errorf("master field count: %w", err)
	}
	idx++

	if idx+numFields > len(raw) {
		return nil, fmt.Errorf("master fields truncated")
	}
	masterFields := raw[idx : idx+numFields]
	idx += numFields
	idx++ // zero marker terminating the master-field list

	total := count + deleted
	out := make([]StreamEntry, 0, count)
	for i := 0; i < total; i++ {
		if idx >= len(raw) {
			return nil, fmt.Errorf("entry %d: truncated before flags", i)
		}
		flags, err := parseStreamInt(raw[idx])
		if err != nil {
			return nil, fmt.Errorf("entry %d flags: %w", i, err)
		}
		idx++

		msDiff, err := parseStreamInt64(raw[idx])
		if err != nil {
			return nil, fmt.Errorf("entry %d ms diff: %w", i, err)
		}
		idx++
		seqDiff, err := parseStreamInt64(raw[idx])
		if err != nil {
			return nil, fmt.Errorf("entry %d seq diff: %w", i, err)
		}
		idx++

		id := StreamID{Ms: uint64(int64(master.Ms) + msDiff), Seq: uint64(int64(master.Seq) + seqDiff)}

		fields := make(map[string][]byte)
		if flags&streamItemFlagSameFields != 0 {
			for _, f := range masterFields {
				if idx >= len(raw) {
					return nil, fmt.Errorf("entry %d: truncated same-fields value", i)
				}
				fields[string(f)] = raw[idx]
				idx++
			}
		} else {
			if idx >= len(raw) {
				return nil, fmt.Errorf("entry %d: truncated field count", i)
			}
			nf, err := parseStreamInt(raw[idx])
			if err != nil {
				return nil, fmt.Errorf("entry %d field count: %w", i, err)
			}
			idx++
			for j := 0; j < nf; j++ {
				if idx+1 >= len(raw) {
					return nil, fmt.Errorf("entry %d: truncated field/value %d", i, j)
				}
				fields[string(raw[idx])] = raw[idx+1]
				idx += 2
			}
		}

		if idx >= len(raw) {
			return nil, fmt.Errorf("entry %d: missing lp-count trailer", i)
		}
		idx++ // lp-count trailer, used only for reverse iteration

		if flags&streamItemFlagDeleted == 0 {
			out = append(out, StreamEntry{ID: id, Fields: fields})
		}
	}

	return out, nil
}

func parseStreamInt(b []byte) (int, error) {
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, err
	}
	return v, nil
}

func parseStreamInt64(b []byte) (int64, error) {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func readRawStreamID(r *byteio.Reader) (StreamID, error) {
	buf, err := r.ReadExact(16)
	if err != nil {
		return StreamID{}, err
	}
	return StreamID{
		Ms:  binary.BigEndian.Uint64(buf[0:8]),
		Seq: binary.BigEndian.Uint64(buf[8:16]),
	}, nil
}

func readMillis(r *byteio.Reader) (int64, error) {
	buf, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}
