package redisrepl

import (
	"time"

	"redisrepl/internal/command"
	"redisrepl/internal/rdb"
)

// Event is implemented by every value the Handler receives. The marker
// method is unexported so only this package can add variants.
type Event interface {
	isEvent()
}

// RDBValue is the decoded shape of one snapshot object. Aliased from
// package rdb so callers never import an internal package to name the
// concrete type they received.
type (
	RDBValue       = rdb.Value
	StringValue    = rdb.StringValue
	ListValue      = rdb.ListValue
	SetValue       = rdb.SetValue
	SortedSetValue = rdb.SortedSetValue
	ZMember        = rdb.ZMember
	HashValue      = rdb.HashValue
	StreamValue    = rdb.StreamValue
	StreamEntry    = rdb.StreamEntry
	StreamID       = rdb.StreamID
	StreamGroup    = rdb.StreamGroup
	PendingEntry   = rdb.PendingEntry
	StreamConsumer = rdb.StreamConsumer
	ModuleValue    = rdb.ModuleValue
)

// DecodedCommand is the decoded shape of one recognized write command.
// Aliased from package command for the same reason as RDBValue.
type DecodedCommand = command.Decoded

// ExpiryKind tags which form, if any, a KeyValueEvent's expiry takes.
type ExpiryKind int

const (
	ExpiryNone ExpiryKind = iota
	ExpirySeconds
	ExpiryMillis
)

// ExpiryHint carries a key's expiry as an absolute instant. Kind
// distinguishes "absent" from the two wire encodings that produced At.
type ExpiryHint struct {
	Kind ExpiryKind
	At   time.Time
}

func expiryFromRDB(h rdb.ExpiryHint) ExpiryHint {
	switch h.Kind {
	case rdb.ExpirySeconds:
		return ExpiryHint{Kind: ExpirySeconds, At: time.UnixMilli(h.AtMs)}
	case rdb.ExpiryMillis:
		return ExpiryHint{Kind: ExpiryMillis, At: time.UnixMilli(h.AtMs)}
	default:
		return ExpiryHint{Kind: ExpiryNone}
	}
}

// SelectEvent announces the db index subsequent KeyValueEvents belong to.
type SelectEvent struct {
	DB int
}

func (SelectEvent) isEvent() {}

// ResizeEvent is a sizing hint for the main/expires hash tables the
// snapshot is about to populate.
type ResizeEvent struct {
	DBSize      uint64
	ExpiresSize uint64
}

func (ResizeEvent) isEvent() {}

// AuxEvent carries snapshot metadata (redis-ver, redis-bits, and similar)
// that isn't itself a key.
type AuxEvent struct {
	Key   []byte
	Value []byte
}

func (AuxEvent) isEvent() {}

// KeyValueEvent is one decoded object from the snapshot.
type KeyValueEvent struct {
	DB     int
	Key    []byte
	Value  RDBValue
	Expiry ExpiryHint
	Idle   *int64
	Freq   *uint8
}

func (KeyValueEvent) isEvent() {}

// CommandEvent is one decoded frame from the post-snapshot stream.
// Decoded is nil for unrecognized command names; Offset is the
// replication offset immediately after this frame was consumed.
type CommandEvent struct {
	Name    string
	Args    [][]byte
	Offset  int64
	Decoded DecodedCommand
}

func (CommandEvent) isEvent() {}

func commandEventFromFrame(f command.Frame, offset int64) CommandEvent {
	decoded := command.Dispatch(f)
	if _, ok := decoded.(command.UnknownCommand); ok {
		return CommandEvent{Name: f.Name, Args: f.Args, Offset: offset}
	}
	return CommandEvent{Name: f.Name, Args: f.Args, Offset: offset, Decoded: decoded}
}
