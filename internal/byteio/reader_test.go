package byteio

import (
	"bytes"
	"hash/crc64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadByte(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	b, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, int64(1), rd.BytesRead())
}

func TestReader_PeekThenReadSeesSameByte(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0xAB, 0xCD}))
	peeked, err := rd.PeekByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), peeked)

	// Peeking does not advance the offset.
	assert.Equal(t, int64(0), rd.BytesRead())

	got, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, peeked, got)
	assert.Equal(t, int64(1), rd.BytesRead())

	next, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xCD), next)
}

func TestReader_ReadExact_SmallAndLarge(t *testing.T) {
	small := bytes.Repeat([]byte{0x7}, 10)
	large := bytes.Repeat([]byte{0x9}, directReadThreshold+1)
	rd := New(bytes.NewReader(append(append([]byte{}, small...), large...)))

	got, err := rd.ReadExact(len(small))
	require.NoError(t, err)
	assert.Equal(t, small, got)

	got, err = rd.ReadExact(len(large))
	require.NoError(t, err)
	assert.Equal(t, large, got)

	assert.Equal(t, int64(len(small)+len(large)), rd.BytesRead())
}

func TestReader_ReadExact_WithPendingPeek(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	_, err := rd.PeekByte()
	require.NoError(t, err)

	got, err := rd.ReadExact(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, got)
}

func TestReader_ReadExact_Zero(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01}))
	got, err := rd.ReadExact(0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReader_ReadExact_ShortRead(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01}))
	_, err := rd.ReadExact(2)
	require.Error(t, err)
}

func TestReader_Drain(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5}, 40*1024)
	rd := New(bytes.NewReader(append(payload, 0xFF)))

	require.NoError(t, rd.Drain(int64(len(payload))))
	assert.Equal(t, int64(len(payload)), rd.BytesRead())

	b, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), b)
}

func TestReader_Drain_WithPendingPeek(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	_, err := rd.PeekByte()
	require.NoError(t, err)

	require.NoError(t, rd.Drain(3))
	assert.Equal(t, int64(3), rd.BytesRead())

	_, err = rd.ReadByte()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_Checksum(t *testing.T) {
	data := []byte("REDIS0011 some payload bytes here")
	rd := New(bytes.NewReader(data))

	rd.BeginChecksum()
	_, err := rd.ReadExact(len(data))
	require.NoError(t, err)
	got := rd.EndChecksum()

	want := crc64.Checksum(data, crc64Table)
	assert.Equal(t, want, got)
}

func TestReader_ResetOffset(t *testing.T) {
	rd := New(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	_, err := rd.ReadExact(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rd.BytesRead())

	rd.ResetOffset()
	assert.Equal(t, int64(0), rd.BytesRead())

	_, err = rd.ReadExact(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rd.BytesRead())
}
