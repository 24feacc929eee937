package rdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redisrepl/internal/byteio"
)

// TestDecodeValue_StreamListpacks3RoutesToStream pins type tag 21
// (RDB_TYPE_STREAM_LISTPACKS_3) to the stream decoder rather than the hash
// decoder it used to collide with under the old, mis-numbered type table.
func TestDecodeValue_StreamListpacks3RoutesToStream(t *testing.T) {
	var body []byte
	body = append(body, 0x00) // numListpacks = 0
	body = append(body, 0x00) // length = 0
	body = append(body, 0x00) // last id ms = 0
	body = append(body, 0x00) // last id seq = 0
	body = append(body, 0x00, 0x00, 0x00, 0x00, 0x00) // v2+ metadata: first_id, max_deleted_id, entries_added (5 length fields)
	body = append(body, 0x00)                         // numGroups = 0

	r := byteio.New(bytes.NewReader(body))
	d := &Decoder{r: r}

	value, err := d.decodeValue(TypeStreamListpacks3)
	require.NoError(t, err)
	stream, ok := value.(StreamValue)
	require.True(t, ok, "expected StreamValue, got %T", value)
	assert.Empty(t, stream.Entries)
	assert.Empty(t, stream.Groups)
}

// TestDecodeValue_HashListpackExRoutesToHash pins type tag 25
// (RDB_TYPE_HASH_LISTPACK_EX) to the hash decoder and confirms the
// per-field TTL triple is unpacked into a plain field/value map.
func TestDecodeValue_HashListpackExRoutesToHash(t *testing.T) {
	lp := buildListpack(encode6BitString("f1"), encode6BitString("v1"), encode7BitUint(0))
	body := plainString(string(lp))

	r := byteio.New(bytes.NewReader(body))
	d := &Decoder{r: r}

	value, err := d.decodeValue(TypeHashListpackEx)
	require.NoError(t, err)
	hash, ok := value.(HashValue)
	require.True(t, ok, "expected HashValue, got %T", value)
	assert.Equal(t, HashValue{"f1": []byte("v1")}, hash)
}

// TestDecodeValue_HashMetadataRejectedNotMisrouted confirms the
// metadata-encoded hash-field-TTL variant fails loudly instead of being
// silently decoded with the wrong shape.
func TestDecodeValue_HashMetadataRejectedNotMisrouted(t *testing.T) {
	d := &Decoder{r: byteio.New(bytes.NewReader(nil))}
	_, err := d.decodeValue(TypeHashMetadata)
	require.Error(t, err)
}
