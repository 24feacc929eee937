// Command redisrepl-tail is a demonstration collaborator for package
// redisrepl: it connects to a master as a replica, prints every decoded
// event, and optionally mirrors write commands into a second Redis
// instance via go-redis — illustrating the cache-warmer/CDC use case
// without making the core library itself writable.
//
// Flag handling and signal ignoring follow the teacher's cli.Execute
// structure (internal/cli/cli.go), trimmed to one subcommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"redisrepl"
	"redisrepl/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	signal.Ignore(syscall.SIGHUP, syscall.SIGPIPE)

	fs := flag.NewFlagSet("redisrepl-tail", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:6379", "master address")
	password := fs.String("password", "", "master password")
	replID := fs.String("replid", "?", "replication id, ? when unknown")
	offset := fs.Int64("offset", -1, "replication offset, -1 when unknown")
	aof := fs.Bool("aof", true, "dispatch post-snapshot command events")
	discardRDB := fs.Bool("discard-rdb", false, "consume and verify the snapshot without dispatching its events")
	mirror := fs.String("mirror", "", "optional address of a second Redis instance to mirror write commands into")
	logLevel := fs.String("log-level", "info", "debug, info, warn, or error")
	logFile := fs.String("log-file", "", "file path for rotated logs, empty means console only")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.New(logging.Options{Level: *logLevel, LogFile: *logFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisrepl-tail: logging setup failed:", err)
		return 1
	}
	defer logger.Sync()

	var mirrorClient *redis.Client
	if *mirror != "" {
		mirrorClient = redis.NewClient(&redis.Options{Addr: *mirror})
		defer mirrorClient.Close()
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Error("dial failed", zap.Error(err))
		return 1
	}
	defer conn.Close()

	var running atomic.Bool
	running.Store(true)

	cfg := redisrepl.Config{
		Addr:       *addr,
		Password:   *password,
		ReplID:     *replID,
		ReplOffset: *offset,
		DiscardRDB: *discardRDB,
		AOF:        *aof,
		Running:    &running,
	}

	h := &tailHandler{logger: logger, mirror: mirrorClient}
	session := redisrepl.New(cfg, conn, h, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		running.Store(false)
		cancel()
	}()

	if err := session.Start(ctx); err != nil {
		logger.Error("session ended with error", zap.Error(err))
		return 1
	}
	logger.Info("session ended cleanly")
	return 0
}

// tailHandler prints every event and, when a mirror target is configured,
// replays each command event's name and arguments into it via go-redis —
// the same client the teacher's comparator/simple.go uses for
// cross-instance traffic. Replay is not filtered: unrecognized commands
// and keepalive PINGs are sent too, and a replay the mirror rejects is
// logged and skipped.
type tailHandler struct {
	logger *zap.Logger
	mirror *redis.Client
	db     int
}

func (h *tailHandler) Handle(e redisrepl.Event) {
	switch ev := e.(type) {
	case redisrepl.SelectEvent:
		h.db = ev.DB
		h.logger.Info("select", zap.Int("db", ev.DB))
	case redisrepl.ResizeEvent:
		h.logger.Debug("resize hint", zap.Uint64("db_size", ev.DBSize), zap.Uint64("expires_size", ev.ExpiresSize))
	case redisrepl.AuxEvent:
		h.logger.Debug("aux", zap.ByteString("key", ev.Key), zap.ByteString("value", ev.Value))
	case redisrepl.KeyValueEvent:
		h.logger.Info("key", zap.ByteString("key", ev.Key), zap.Int("db", ev.DB))
	case redisrepl.CommandEvent:
		h.logger.Info("command", zap.String("name", ev.Name), zap.Int64("offset", ev.Offset))
		h.replay(ev)
	}
}

func (h *tailHandler) replay(ev redisrepl.CommandEvent) {
	if h.mirror == nil {
		return
	}
	args := make([]interface{}, 0, len(ev.Args)+1)
	args = append(args, ev.Name)
	for _, a := range ev.Args {
		args = append(args, a)
	}
	if err := h.mirror.Do(context.Background(), args...).Err(); err != nil {
		h.logger.Warn("mirror replay failed", zap.String("command", ev.Name), zap.Error(err))
	}
}
