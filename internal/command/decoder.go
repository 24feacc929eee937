package command

import (
	"fmt"
	"strconv"

	"redisrepl/internal/byteio"
)

// Decoder reads RESP multi-bulk command frames off the post-snapshot
// replication stream. It also recognizes the two keepalive shapes the
// master sends between real commands: a bare newline, and an inline
// "+PING\r\n"-style simple string.
type Decoder struct {
	r *byteio.Reader
}

// NewDecoder wraps r. The caller is responsible for having already reset
// r's offset counter at the snapshot/stream boundary.
func NewDecoder(r *byteio.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next reads one frame. ByteLen always equals the number of stream bytes
// the frame consumed, regardless of shape.
func (d *Decoder) Next() (Frame, error) {
	before := d.r.BytesRead()

	b, err := d.r.PeekByte()
	if err != nil {
		return Frame{}, fmt.Errorf("command: peek frame prefix: %w", err)
	}

	var frame Frame
	switch b {
	case '\n':
		if _, err := d.r.ReadByte(); err != nil {
			return Frame{}, err
		}
		frame = Frame{Name: "PING"}
	case '+':
		if _, err := d.r.ReadByte(); err != nil { // consume '+'
			return Frame{}, err
		}
		line, err := d.readLine()
		if err != nil {
			return Frame{}, err
		}
		frame = parseInlineLine(line)
	case '*':
		args, err := d.readMultiBulk()
		if err != nil {
			return Frame{}, err
		}
		if len(args) == 0 {
			return Frame{}, fmt.Errorf("command: empty multi-bulk frame")
		}
		frame = Frame{Name: string(args[0]), Args: args[1:]}
	default:
		return Frame{}, fmt.Errorf("command: unexpected frame prefix %q", b)
	}

	frame.ByteLen = d.r.BytesRead() - before
	return frame, nil
}

func (d *Decoder) readMultiBulk() ([][]byte, error) {
	if _, err := d.r.ReadByte(); err != nil { // consume '*'
		return nil, err
	}
	line, err := d.readLine()
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("command: parse array length %q: %w", line, err)
	}
	if count < 0 {
		return nil, nil
	}

	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("command: read bulk prefix: %w", err)
		}
		if b != '$' {
			return nil, fmt.Errorf("command: expected bulk prefix '$', got %q", b)
		}
		line, err := d.readLine()
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("command: parse bulk length %q: %w", line, err)
		}
		payload, err := d.r.ReadExact(size + 2)
		if err != nil {
			return nil, fmt.Errorf("command: read bulk payload: %w", err)
		}
		arg := make([]byte, size)
		copy(arg, payload[:size])
		out = append(out, arg)
	}
	return out, nil
}

// readLine reads up to and including a trailing \r\n, returning the line
// without the terminator.
func (d *Decoder) readLine() (string, error) {
	var line []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("command: read line: %w", err)
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}

func parseInlineLine(line string) Frame {
	fields := splitFields(line)
	if len(fields) == 0 {
		return Frame{Name: "PING"}
	}
	args := make([][]byte, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = []byte(f)
	}
	return Frame{Name: fields[0], Args: args}
}

func splitFields(s string) []string {
	var fields []string
	var cur []byte
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if len(cur) > 0 {
				fields = append(fields, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, s[i])
	}
	if len(cur) > 0 {
		fields = append(fields, string(cur))
	}
	return fields
}
