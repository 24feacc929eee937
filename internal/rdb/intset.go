package rdb

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// decodeIntset parses [encoding:4][length:4][length*encoding little-endian
// ints], lifted from the teacher's parseIntset unchanged at the
// bit-twiddling level.
func decodeIntset(data []byte) ([][]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("rdb: intset payload too short (%d bytes)", len(data))
	}

	encoding := binary.LittleEndian.Uint32(data[0:4])
	length := binary.LittleEndian.Uint32(data[4:8])

	members := make([][]byte, 0, length)
	offset := 8
	for i := uint32(0); i < length; i++ {
		var val int64
		switch encoding {
		case 2:
			if offset+2 > len(data) {
				return nil, fmt.Errorf("rdb: intset int16 entry %d truncated", i)
			}
			val = int64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
			offset += 2
		case 4:
			if offset+4 > len(data) {
				return nil, fmt.Errorf("rdb: intset int32 entry %d truncated", i)
			}
			val = int64(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
			offset += 4
		case 8:
			if offset+8 > len(data) {
				return nil, fmt.Errorf("rdb: intset int64 entry %d truncated", i)
			}
			val = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			offset += 8
		default:
			return nil, fmt.Errorf("rdb: unsupported intset encoding width %d", encoding)
		}
		members = append(members, []byte(strconv.FormatInt(val, 10)))
	}
	return members, nil
}
