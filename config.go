package redisrepl

import (
	"sync/atomic"
	"time"
)

// Config is the configuration surface a caller builds in code — the
// primary path, matching the teacher's config.Config being
// caller-constructed for migration paths that never read a file.
// LoadConfig and WatchConfig build one of these from a YAML, JSON, or TOML
// file via viper instead.
type Config struct {
	Addr     string
	Password string

	// ReplID is "?" when unknown. ReplOffset is -1 when unknown.
	ReplID     string
	ReplOffset int64

	// DiscardRDB, if true, still consumes and checksum-verifies the
	// snapshot but never dispatches its events.
	DiscardRDB bool
	// AOF, if true, dispatches post-snapshot command events. If false,
	// Start returns once the snapshot phase ends.
	AOF bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxBytesPerSecond throttles reads off the transport when positive.
	// Zero means unlimited.
	MaxBytesPerSecond int

	// ListeningPort is announced via REPLCONF listening-port during the
	// handshake. Zero is a valid value — it just means "no inbound port".
	ListeningPort int

	// AckInterval is how often REPLCONF ACK <offset> is written once the
	// stream phase starts. Zero defaults to one second.
	AckInterval time.Duration

	// Running, when non-nil, is polled at frame/opcode boundaries; a
	// cleared flag causes Start to stop and return ErrCancelled. A nil
	// Running means the session stops only on error, stream EOF, or
	// cancellation of Start's context during the stream phase.
	Running *atomic.Bool

	LogFile  string
	LogLevel string
}
