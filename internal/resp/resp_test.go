package resp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCommand_EncodesMultiBulk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCommand(&buf, "REPLCONF", "listening-port", "6380"))
	assert.Equal(t, "*3\r\n$8\r\nREPLCONF\r\n$14\r\nlistening-port\r\n$4\r\n6380\r\n", buf.String())
}

func TestReadReply_SimpleString(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("+OK\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, "OK", reply)
}

func TestReadReply_FullResync(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("+FULLRESYNC a1b2c3 100\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, "FULLRESYNC a1b2c3 100", reply)
}

func TestReadReply_ErrorReply(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("-ERR invalid password\r\n")))
	_, err := ReadReply(r)
	require.Error(t, err)
	assert.True(t, IsReplyError(err))
	assert.Contains(t, err.Error(), "invalid password")
}

func TestReadReply_Integer(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte(":42\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), reply)
}

func TestReadReply_BulkString(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("$5\r\nhello\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestReadReply_NullBulk(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("$-1\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestReadReply_Array(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("*2\r\n$3\r\nfoo\r\n:7\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"foo", int64(7)}, reply)
}

func TestReadReply_NullArray(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("*-1\r\n")))
	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestReadReply_UnknownPrefix(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("?oops\r\n")))
	_, err := ReadReply(r)
	require.Error(t, err)
}

func TestAsString(t *testing.T) {
	s, err := AsString("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	s, err = AsString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = AsString(int64(5))
	require.Error(t, err)
}
