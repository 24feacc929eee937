package rdb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntset_Int16(t *testing.T) {
	data := make([]byte, 8+2*2)
	binary.LittleEndian.PutUint32(data[0:4], 2) // encoding width
	binary.LittleEndian.PutUint32(data[4:8], 2) // length
	negFive := int16(-5)
	binary.LittleEndian.PutUint16(data[8:10], uint16(negFive))
	binary.LittleEndian.PutUint16(data[10:12], 1000)

	members, err := decodeIntset(data)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("-5"), []byte("1000")}, members)
}

func TestDecodeIntset_TooShort(t *testing.T) {
	_, err := decodeIntset([]byte{1, 2, 3})
	require.Error(t, err)
}
