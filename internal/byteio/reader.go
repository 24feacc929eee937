// Package byteio provides the buffered, checksum-capturing byte source that
// every decoder in this module reads through.
package byteio

import (
	"fmt"
	"hash/crc64"
	"io"
)

// crc64Table uses the "Jones" polynomial Redis computes RDB checksums with,
// not the ISO or ECMA variants hash/crc64 ships by default.
var crc64Table = crc64.MakeTable(0xad93d23594c935a9)

const directReadThreshold = 4096

// Reader wraps a transport with read-exact, peek, drain, and checksum
// capture primitives. It never buffers more than it needs to satisfy the
// next read, and bypasses its scratch buffer for payloads larger than
// directReadThreshold bytes.
type Reader struct {
	r   io.Reader
	buf []byte // 1-byte peek buffer
	has bool   // buf holds an unconsumed peeked byte

	scratch []byte // reused for small ReadExact calls

	checksumOn bool
	crc        uint64

	bytesRead int64 // offset source of truth in the post-snapshot phase
}

// New wraps r. r is read forward-only; New never seeks.
func New(r io.Reader) *Reader {
	return &Reader{r: r, scratch: make([]byte, 256)}
}

// ReadByte returns the next byte, honoring any previously peeked byte.
func (rd *Reader) ReadByte() (byte, error) {
	if rd.has {
		rd.has = false
		b := rd.buf[0]
		rd.account([]byte{b})
		return b, nil
	}
	var b [1]byte
	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return 0, fmt.Errorf("byteio: read byte: %w", err)
	}
	rd.account(b[:])
	return b[0], nil
}

// PeekByte returns the next byte without consuming it. A subsequent
// ReadByte/ReadExact call sees the same byte first.
func (rd *Reader) PeekByte() (byte, error) {
	if rd.has {
		return rd.buf[0], nil
	}
	var b [1]byte
	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return 0, fmt.Errorf("byteio: peek byte: %w", err)
	}
	rd.buf = b[:]
	rd.has = true
	return b[0], nil
}

// ReadExact reads exactly n bytes. For n up to directReadThreshold the
// returned slice is only valid until the next call into the Reader —
// callers that need to retain it must copy. Payloads larger than the
// threshold are read directly into a freshly allocated slice to avoid a
// double copy.
func (rd *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("byteio: negative read length %d", n)
	}
	if n == 0 {
		return nil, nil
	}

	var out []byte
	start := 0
	if rd.has {
		rd.has = false
		if n <= directReadThreshold {
			if cap(rd.scratch) < n {
				rd.scratch = make([]byte, n)
			}
			out = rd.scratch[:n]
		} else {
			out = make([]byte, n)
		}
		out[0] = rd.buf[0]
		start = 1
	} else if n <= directReadThreshold {
		if cap(rd.scratch) < n {
			rd.scratch = make([]byte, n)
		}
		out = rd.scratch[:n]
	} else {
		out = make([]byte, n)
	}

	if start < n {
		if _, err := io.ReadFull(rd.r, out[start:]); err != nil {
			return nil, fmt.Errorf("byteio: read %d bytes: %w", n, err)
		}
	}
	rd.account(out)
	return out, nil
}

// Drain discards n bytes without materializing them, still feeding the
// checksum and offset counter.
func (rd *Reader) Drain(n int64) error {
	if n <= 0 {
		return nil
	}
	if rd.has {
		rd.has = false
		rd.account(rd.buf[:1])
		n--
	}
	buf := make([]byte, 32*1024)
	for n > 0 {
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		if _, err := io.ReadFull(rd.r, buf[:chunk]); err != nil {
			return fmt.Errorf("byteio: drain %d bytes: %w", n, err)
		}
		rd.account(buf[:chunk])
		n -= chunk
	}
	return nil
}

// BeginChecksum starts CRC64 accumulation over every byte consumed from
// this point on. Calling it again resets the running checksum.
func (rd *Reader) BeginChecksum() {
	rd.checksumOn = true
	rd.crc = 0
}

// EndChecksum stops accumulation and returns the captured value.
func (rd *Reader) EndChecksum() uint64 {
	rd.checksumOn = false
	return rd.crc
}

// BytesRead returns the running count of bytes consumed since the last
// ResetOffset call. It is the replication offset source of truth.
func (rd *Reader) BytesRead() int64 {
	return rd.bytesRead
}

// ResetOffset zeroes the byte counter. Called once, when the session
// switches from the snapshot phase to the post-snapshot stream (the
// snapshot itself never contributes to the replication offset).
func (rd *Reader) ResetOffset() {
	rd.bytesRead = 0
}

func (rd *Reader) account(b []byte) {
	rd.bytesRead += int64(len(b))
	if rd.checksumOn {
		rd.crc = crc64.Update(rd.crc, crc64Table, b)
	}
}
