package rdb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildListpack(entries ...[]byte) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, e...)
	}
	header := make([]byte, 6)
	total := uint32(6 + len(body) + 1)
	binary.LittleEndian.PutUint32(header[0:4], total)
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(entries)))
	out := append(header, body...)
	return append(out, 0xFF)
}

// encode7BitUint builds a listpack entry for a small unsigned int (0-127),
// including its 1-byte backlen trailer.
func encode7BitUint(v byte) []byte {
	return []byte{v, 1}
}

// encode6BitString builds a listpack entry for a short string.
func encode6BitString(s string) []byte {
	entry := append([]byte{0x80 | byte(len(s))}, []byte(s)...)
	return append(entry, byte(len(entry)))
}

func TestDecodeListpack_MixedEntries(t *testing.T) {
	data := buildListpack(encode7BitUint(42), encode6BitString("hi"))
	entries, err := decodeListpack(data)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("42"), []byte("hi")}, entries)
}

func TestDecodeListpack_EmptySpecialForm(t *testing.T) {
	entries, err := decodeListpack([]byte{0x01})
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestDecodeListpack_LengthMismatch(t *testing.T) {
	data := buildListpack(encode7BitUint(1))
	data[0] ^= 0xFF // corrupt the total_bytes header
	_, err := decodeListpack(data)
	require.Error(t, err)
}
