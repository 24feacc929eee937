package rdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeZiplist_Strings(t *testing.T) {
	// header (10 bytes, values irrelevant to the decoder) + two 6-bit
	// string entries + terminator.
	data := []byte{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // zlbytes/zltail/zllen, unchecked
		0x00, 0x03, 'f', 'o', 'o', // prevlen=0, encoding 00|000011, "foo"
		0x05, 0x03, 'b', 'a', 'r', // prevlen=5, encoding 00|000011, "bar"
		0xFF,
	}
	entries, err := decodeZiplist(data)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("foo"), []byte("bar")}, entries)
}

func TestDecodeZiplist_TooShort(t *testing.T) {
	_, err := decodeZiplist([]byte{1, 2, 3})
	require.Error(t, err)
}
