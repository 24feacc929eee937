// Package rateio throttles a byte stream using golang.org/x/time/rate,
// the same limiter the teacher project throttles its write path with
// (internal/replica/flow_writer.go in df2redis); here it throttles reads
// instead, bounding how fast a session drains a master's RDB snapshot.
package rateio

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Reader wraps r so that Read calls are limited to roughly bytesPerSecond.
type Reader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// New returns a throttled reader. bytesPerSecond <= 0 means unlimited, in
// which case New returns r unchanged so callers can unconditionally wrap.
func New(r io.Reader, bytesPerSecond int) io.Reader {
	if bytesPerSecond <= 0 {
		return r
	}
	// Burst must cover the largest single Read the decoders issue (large
	// RDB strings are read in one ReadExact call); floor it well above
	// typical chunk sizes so WaitN never rejects a single read outright.
	burst := bytesPerSecond
	if burst < 1<<20 {
		burst = 1 << 20
	}
	return &Reader{
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
		ctx:     context.Background(),
	}
}

func (t *Reader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n <= 0 {
		return n, err
	}

	// WaitN rejects requests above the bucket's burst size outright, so a
	// single large read (e.g. a multi-megabyte RDB string) is drained in
	// burst-sized waits instead of one call.
	remaining := n
	burst := t.limiter.Burst()
	for remaining > 0 {
		chunk := remaining
		if chunk > burst {
			chunk = burst
		}
		if werr := t.limiter.WaitN(t.ctx, chunk); werr != nil {
			return n, werr
		}
		remaining -= chunk
	}
	return n, err
}
