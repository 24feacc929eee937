package rdb

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redisrepl/internal/byteio"
)

func plainString(s string) []byte {
	return append([]byte{byte(len(s))}, []byte(s)...)
}

func buildSnapshot() []byte {
	var buf bytes.Buffer
	buf.WriteString("REDIS0011")

	buf.WriteByte(0xFA) // aux
	buf.Write(plainString("redis-ver"))
	buf.Write(plainString("7.0.0"))

	buf.WriteByte(0xFB) // resize-db
	buf.WriteByte(2)    // main hint, 6-bit length
	buf.WriteByte(0)    // expires hint

	buf.WriteByte(0xFE) // select-db
	buf.WriteByte(0)

	buf.WriteByte(0xFC) // expire-ms
	expireAt := make([]byte, 8)
	binary.LittleEndian.PutUint64(expireAt, 1700000000000)
	buf.Write(expireAt)
	buf.WriteByte(TypeString)
	buf.Write(plainString("k1"))
	buf.Write(plainString("v1"))

	buf.WriteByte(TypeString)
	buf.Write(plainString("k2"))
	buf.Write(plainString("v2"))

	buf.WriteByte(0xFF) // eof
	buf.Write(make([]byte, 8))

	return buf.Bytes()
}

func TestDecoder_FullSnapshot(t *testing.T) {
	r := byteio.New(bytes.NewReader(buildSnapshot()))
	d := NewDecoder(r)

	version, err := d.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, 11, version)

	rec, err := d.Next()
	require.NoError(t, err)
	aux, ok := rec.(AuxRecord)
	require.True(t, ok)
	assert.Equal(t, []byte("redis-ver"), aux.Key)
	assert.Equal(t, []byte("7.0.0"), aux.Value)

	rec, err = d.Next()
	require.NoError(t, err)
	resize, ok := rec.(ResizeRecord)
	require.True(t, ok)
	assert.Equal(t, uint64(2), resize.DBSize)

	rec, err = d.Next()
	require.NoError(t, err)
	sel, ok := rec.(SelectRecord)
	require.True(t, ok)
	assert.Equal(t, 0, sel.DB)

	rec, err = d.Next()
	require.NoError(t, err)
	kv, ok := rec.(KeyValueRecord)
	require.True(t, ok)
	assert.Equal(t, []byte("k1"), kv.Key)
	assert.Equal(t, StringValue("v1"), kv.Value)
	assert.Equal(t, ExpiryMillis, kv.Expiry.Kind)
	assert.Equal(t, int64(1700000000000), kv.Expiry.AtMs)

	rec, err = d.Next()
	require.NoError(t, err)
	kv2, ok := rec.(KeyValueRecord)
	require.True(t, ok)
	assert.Equal(t, []byte("k2"), kv2.Key)
	assert.Equal(t, StringValue("v2"), kv2.Value)
	assert.Equal(t, ExpiryNone, kv2.Expiry.Kind)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_BadMagic(t *testing.T) {
	r := byteio.New(bytes.NewReader([]byte("NOTRDB0011")))
	_, err := NewDecoder(r).ReadHeader()
	require.Error(t, err)
}

func TestDecoder_ChecksumMismatchIsFatal(t *testing.T) {
	data := buildSnapshot()
	// Overwrite the trailing 8 zero checksum bytes with a bogus nonzero
	// value so verification fails.
	binary.LittleEndian.PutUint64(data[len(data)-8:], 0xDEADBEEF)

	r := byteio.New(bytes.NewReader(data))
	d := NewDecoder(r)
	_, err := d.ReadHeader()
	require.NoError(t, err)

	for {
		_, err = d.Next()
		if err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}
