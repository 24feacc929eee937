package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redisrepl/internal/byteio"
)

func TestDecoder_MultiBulkSet(t *testing.T) {
	wire := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	r := byteio.New(bytes.NewReader([]byte(wire)))
	d := NewDecoder(r)

	frame, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "SET", frame.Name)
	assert.Equal(t, [][]byte{[]byte("k"), []byte("v")}, frame.Args)
	assert.Equal(t, int64(len(wire)), frame.ByteLen)
}

func TestDecoder_BareNewlineKeepalive(t *testing.T) {
	r := byteio.New(bytes.NewReader([]byte("\n*1\r\n$4\r\nPING\r\n")))
	d := NewDecoder(r)

	frame, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "PING", frame.Name)
	assert.Equal(t, int64(1), frame.ByteLen)

	frame, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, "PING", frame.Name)
}

func TestDecoder_InlineSimpleStringPing(t *testing.T) {
	r := byteio.New(bytes.NewReader([]byte("+PING\r\n")))
	d := NewDecoder(r)

	frame, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "PING", frame.Name)
	assert.Equal(t, int64(len("+PING\r\n")), frame.ByteLen)
}

func TestDecoder_SequentialFramesAdvanceOffsetExactly(t *testing.T) {
	wire := "*1\r\n$4\r\nPING\r\n*2\r\n$3\r\nDEL\r\n$1\r\nk\r\n"
	r := byteio.New(bytes.NewReader([]byte(wire)))
	d := NewDecoder(r)

	f1, err := d.Next()
	require.NoError(t, err)
	f2, err := d.Next()
	require.NoError(t, err)

	assert.Equal(t, int64(len(wire)), f1.ByteLen+f2.ByteLen)
}

func TestDispatch_KnownAndUnknown(t *testing.T) {
	sel := Dispatch(Frame{Name: "select", Args: [][]byte{[]byte("3")}})
	assert.Equal(t, SelectCommand{Name: "SELECT", DB: 3}, sel)

	set := Dispatch(Frame{Name: "SET", Args: [][]byte{[]byte("k"), []byte("v")}})
	assert.Equal(t, "k", string(set.(StringWriteCommand).Key))
	assert.Equal(t, "v", string(set.(StringWriteCommand).Value))

	flush := Dispatch(Frame{Name: "FLUSHALL", Args: [][]byte{[]byte("ASYNC")}})
	assert.True(t, flush.(FlushCommand).Async)

	unk := Dispatch(Frame{Name: "FROBNICATE", Args: [][]byte{[]byte("x")}})
	assert.Equal(t, "FROBNICATE", unk.Command())
	_, ok := unk.(UnknownCommand)
	assert.True(t, ok)
}

func TestDispatch_ReplConfIgnoredButTyped(t *testing.T) {
	d := Dispatch(Frame{Name: "REPLCONF", Args: [][]byte{[]byte("GETACK"), []byte("*")}})
	rc, ok := d.(ReplConfCommand)
	require.True(t, ok)
	assert.Equal(t, "REPLCONF", rc.Command())
}
