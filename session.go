package redisrepl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"redisrepl/internal/byteio"
	"redisrepl/internal/command"
	"redisrepl/internal/rateio"
	"redisrepl/internal/rdb"
	"redisrepl/internal/resp"
)

// Conn is the transport seam. *net.TCPConn and *tls.Conn satisfy it
// directly — the library never constructs a socket itself.
type Conn interface {
	io.Reader
	io.Writer
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
	Close() error
}

type state int

const (
	stateDisconnected state = iota
	stateHandshake
	stateReceivingRDB
	stateReceivingStream
	stateStopped
	stateFailed
)

// Session drives one replication connection end to end: handshake,
// snapshot decode, command-stream decode, periodic ACKs. Grounded on the
// teacher's replicator.go Start/handshake sequencing style — named step
// methods called in order, a state field updated around each — collapsed
// from Dragonfly's multi-FLOW fan-out into the single-connection PSYNC
// flow this protocol uses.
type Session struct {
	cfg    Config
	conn   Conn
	h      Handler
	logger *zap.Logger

	state state

	replID     string
	replOffset int64
	offset     atomic.Int64

	br *bufio.Reader
}

// New builds a Session. The connection is not touched until Start is
// called.
func New(cfg Config, conn Conn, h Handler, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{cfg: cfg, conn: conn, h: h, logger: logger}
}

// Start runs the handshake, then the snapshot phase, then (if
// Config.AOF) the command-stream phase, dispatching events to the
// Handler as they decode. It returns when the stream ends, the
// connection fails, decoding fails, or the control flag clears.
func (s *Session) Start(ctx context.Context) error {
	s.state = stateHandshake
	s.br = bufio.NewReader(s.throttledReader())

	if err := s.handshake(); err != nil {
		s.state = stateFailed
		return err
	}

	s.state = stateReceivingRDB
	if err := s.receiveSnapshot(); err != nil {
		s.state = stateFailed
		return err
	}

	if !s.cfg.AOF {
		s.state = stateStopped
		return nil
	}

	s.state = stateReceivingStream
	ackCtx, cancelAck := context.WithCancel(ctx)
	defer cancelAck()
	go s.ackLoop(ackCtx)

	err := s.receiveStream(ctx)
	cancelAck()
	if errors.Is(err, ErrCancelled) {
		s.state = stateStopped
		return err
	}
	if err != nil {
		s.state = stateFailed
		return err
	}
	s.state = stateStopped
	return nil
}

func (s *Session) throttledReader() io.Reader {
	if s.cfg.MaxBytesPerSecond <= 0 {
		return s.conn
	}
	return rateio.New(s.conn, s.cfg.MaxBytesPerSecond)
}

// handshake runs PING -> [AUTH] -> REPLCONF listening-port -> REPLCONF
// capa eof capa psync2 -> PSYNC, named step methods in the order
// replicator.go's handshake() calls them.
func (s *Session) handshake() error {
	s.setDeadlines()

	if err := s.sendPing(); err != nil {
		return err
	}
	if s.cfg.Password != "" {
		if err := s.sendAuth(); err != nil {
			return err
		}
	}
	if err := s.sendListeningPort(); err != nil {
		return err
	}
	if err := s.sendCapa(); err != nil {
		return err
	}
	return s.sendPsync()
}

func (s *Session) writeCommand(args ...string) error {
	if err := resp.WriteCommand(s.conn, args...); err != nil {
		return &TransportError{Op: "write " + args[0], Err: err}
	}
	return nil
}

func (s *Session) readReply() (interface{}, error) {
	reply, err := resp.ReadReply(s.br)
	if err != nil {
		if resp.IsReplyError(err) {
			return nil, &ProtocolError{Expected: "simple reply", Got: err.Error()}
		}
		return nil, &TransportError{Op: "read reply", Err: err}
	}
	return reply, nil
}

func (s *Session) sendPing() error {
	if err := s.writeCommand("PING"); err != nil {
		return err
	}
	reply, err := s.readReply()
	if err != nil {
		return err
	}
	str, _ := resp.AsString(reply)
	if str != "PONG" {
		return &ProtocolError{Expected: "PONG", Got: fmt.Sprint(reply)}
	}
	s.logger.Debug("handshake: ping ok")
	return nil
}

func (s *Session) sendAuth() error {
	if err := s.writeCommand("AUTH", s.cfg.Password); err != nil {
		return err
	}
	return s.expectOK("AUTH")
}

func (s *Session) sendListeningPort() error {
	port := strconv.Itoa(s.cfg.ListeningPort)
	if err := s.writeCommand("REPLCONF", "listening-port", port); err != nil {
		return err
	}
	return s.expectOK("REPLCONF listening-port")
}

func (s *Session) sendCapa() error {
	if err := s.writeCommand("REPLCONF", "capa", "eof", "capa", "psync2"); err != nil {
		return err
	}
	return s.expectOK("REPLCONF capa")
}

func (s *Session) expectOK(op string) error {
	reply, err := s.readReply()
	if err != nil {
		return err
	}
	str, _ := resp.AsString(reply)
	if str != "OK" {
		return &ProtocolError{Expected: op + " OK", Got: fmt.Sprint(reply)}
	}
	s.logger.Debug("handshake step ok", zap.String("op", op))
	return nil
}

func (s *Session) sendPsync() error {
	id := s.cfg.ReplID
	if id == "" {
		id = "?"
	}
	offset := strconv.FormatInt(s.cfg.ReplOffset, 10)
	if err := s.writeCommand("PSYNC", id, offset); err != nil {
		return err
	}
	reply, err := s.readReply()
	if err != nil {
		return err
	}
	line, _ := resp.AsString(reply)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &ProtocolError{Expected: "FULLRESYNC or CONTINUE", Got: line}
	}

	switch strings.ToUpper(fields[0]) {
	case "FULLRESYNC":
		if len(fields) < 3 {
			return &ProtocolError{Expected: "FULLRESYNC <id> <offset>", Got: line}
		}
		s.replID = fields[1]
		off, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return &ProtocolError{Expected: "numeric offset", Got: fields[2]}
		}
		s.replOffset = off
		s.offset.Store(off)
		s.logger.Info("handshake: full resync", zap.String("repl_id", s.replID), zap.Int64("offset", off))
		return nil
	case "CONTINUE":
		if len(fields) >= 2 {
			s.replID = fields[1]
		}
		s.offset.Store(s.cfg.ReplOffset)
		s.logger.Info("handshake: partial resync continuation")
		return nil
	default:
		return &ProtocolError{Expected: "FULLRESYNC or CONTINUE", Got: line}
	}
}

func (s *Session) setDeadlines() {
	if s.cfg.ReadTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
}

// rdbBulkHeader reads the "$<len>\r\n" or "$EOF:<40 bytes>\r\n" header the
// master sends immediately after FULLRESYNC, ahead of the raw RDB bytes.
func (s *Session) rdbBulkHeader() (length int64, eofMarker string, err error) {
	b, err := s.br.ReadByte()
	if err != nil {
		return 0, "", &TransportError{Op: "read rdb bulk prefix", Err: err}
	}
	if b != '$' {
		return 0, "", &ProtocolError{Expected: "'$' rdb bulk prefix", Got: string(b)}
	}
	line, err := s.br.ReadString('\n')
	if err != nil {
		return 0, "", &TransportError{Op: "read rdb bulk header", Err: err}
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "EOF:") {
		return 0, strings.TrimPrefix(line, "EOF:"), nil
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, "", &ProtocolError{Expected: "numeric rdb bulk length", Got: line}
	}
	return n, "", nil
}

// receiveSnapshot reads the RDB bulk header, then decodes the snapshot
// structurally with rdb.Decoder until its EOF opcode, dispatching
// Snapshot events unless DiscardRDB is set. When the master negotiated
// EOF-delimited framing it also verifies the trailing 40-byte marker.
func (s *Session) receiveSnapshot() error {
	_, eofMarker, err := s.rdbBulkHeader()
	if err != nil {
		return err
	}

	byteReader := byteio.New(s.br)
	dec := rdb.NewDecoder(byteReader)
	if _, err := dec.ReadHeader(); err != nil {
		return &FormatError{Stage: "rdb header", Err: err}
	}

	db := 0
	for {
		if s.cancelled() {
			return ErrCancelled
		}
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &FormatError{Stage: "rdb record", Err: err}
		}
		if s.cfg.DiscardRDB {
			continue
		}
		s.dispatchSnapshotRecord(rec, &db)
	}

	if eofMarker != "" {
		marker, err := byteReader.ReadExact(40)
		if err != nil {
			return &TransportError{Op: "read eof marker", Err: err}
		}
		if string(marker) != eofMarker {
			return &FormatError{Stage: "eof marker", Err: fmt.Errorf("marker mismatch")}
		}
	}

	s.logger.Info("snapshot phase complete")
	return nil
}

func (s *Session) dispatchSnapshotRecord(rec rdb.Record, db *int) {
	switch r := rec.(type) {
	case rdb.SelectRecord:
		*db = r.DB
		s.h.Handle(SelectEvent{DB: r.DB})
	case rdb.ResizeRecord:
		s.h.Handle(ResizeEvent{DBSize: r.DBSize, ExpiresSize: r.ExpiresSize})
	case rdb.AuxRecord:
		s.h.Handle(AuxEvent{Key: r.Key, Value: r.Value})
	case rdb.KeyValueRecord:
		s.h.Handle(KeyValueEvent{
			DB:     r.DB,
			Key:    r.Key,
			Value:  r.Value,
			Expiry: expiryFromRDB(r.Expiry),
			Idle:   r.Idle,
			Freq:   r.Freq,
		})
	}
}

// receiveStream decodes the post-snapshot command stream. The session
// offset already holds the value PSYNC reported; each frame's ByteLen is
// added to it, counted by a fresh byte reader whose counter starts at
// zero, so snapshot bytes never count toward the replication offset.
func (s *Session) receiveStream(ctx context.Context) error {
	byteReader := byteio.New(s.br)
	byteReader.ResetOffset()
	dec := command.NewDecoder(byteReader)

	for {
		if s.cancelled() {
			return ErrCancelled
		}
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		frame, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &FormatError{Stage: "command frame", Err: err}
		}

		s.offset.Add(frame.ByteLen)
		s.h.Handle(commandEventFromFrame(frame, s.offset.Load()))
	}
}

func (s *Session) cancelled() bool {
	return s.cfg.Running != nil && !s.cfg.Running.Load()
}

// ackLoop writes REPLCONF ACK <offset> once per AckInterval (default one
// second) while the stream phase runs. It is the session's only
// background worker; it owns the write half exclusively while the driver
// goroutine only reads, so no mutex is needed on the hot path.
func (s *Session) ackLoop(ctx context.Context) {
	interval := s.cfg.AckInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			offset := s.offset.Load()
			if err := s.writeCommand("REPLCONF", "ACK", strconv.FormatInt(offset, 10)); err != nil {
				s.logger.Debug("ack write failed", zap.Error(err))
				return
			}
			s.logger.Debug("ack sent", zap.Int64("offset", offset))
		}
	}
}
