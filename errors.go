package redisrepl

import "errors"

// ErrCancelled is returned by Session.Start when the caller's control
// flag cleared mid-session, or when Start's context was cancelled during
// the stream phase. It is an orderly stop, not a failure —
// callers distinguish it from every other error kind with errors.Is.
var ErrCancelled = errors.New("redisrepl: session cancelled")

// TransportError wraps a connect/read/write/timeout failure from the
// underlying Conn.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "redisrepl: transport error during " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports an unexpected reply during the handshake or a
// malformed RESP frame in the command stream.
type ProtocolError struct {
	Expected string
	Got      string
}

func (e *ProtocolError) Error() string {
	return "redisrepl: protocol error: expected " + e.Expected + ", got " + e.Got
}

// FormatError reports a decode-time failure: bad RDB magic, unknown
// opcode/object tag, LZF corruption, or checksum mismatch.
type FormatError struct {
	Stage string
	Err   error
}

func (e *FormatError) Error() string {
	return "redisrepl: format error at " + e.Stage + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }
