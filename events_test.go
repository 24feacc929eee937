package redisrepl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"redisrepl/internal/command"
	"redisrepl/internal/rdb"
)

func TestExpiryFromRDB(t *testing.T) {
	none := expiryFromRDB(rdb.ExpiryHint{})
	assert.Equal(t, ExpiryNone, none.Kind)

	ms := expiryFromRDB(rdb.ExpiryHint{Kind: rdb.ExpiryMillis, AtMs: 1700000000000})
	assert.Equal(t, ExpiryMillis, ms.Kind)
	assert.Equal(t, time.UnixMilli(1700000000000), ms.At)
}

func TestCommandEventFromFrame_Recognized(t *testing.T) {
	f := command.Frame{Name: "SET", Args: [][]byte{[]byte("k"), []byte("v")}, ByteLen: 22}
	ev := commandEventFromFrame(f, 22)
	assert.Equal(t, "SET", ev.Name)
	assert.Equal(t, int64(22), ev.Offset)
	assert.NotNil(t, ev.Decoded)
}

func TestCommandEventFromFrame_Unrecognized(t *testing.T) {
	f := command.Frame{Name: "FROBNICATE", Args: nil, ByteLen: 10}
	ev := commandEventFromFrame(f, 10)
	assert.Equal(t, "FROBNICATE", ev.Name)
	assert.Nil(t, ev.Decoded)
}

func TestHandlerFunc_Invokes(t *testing.T) {
	var got Event
	h := HandlerFunc(func(e Event) { got = e })
	h.Handle(SelectEvent{DB: 2})
	assert.Equal(t, SelectEvent{DB: 2}, got)
}
