// Package logging constructs the zap.Logger each Session is built with.
// Grounded on SyncdevWu-gokv's config.LogConfig/zap wiring: the same
// mode/level/filename/max-size/max-age/max-backups shape, adapted from a
// package-level global (zap.L()) to a value the caller injects explicitly
// so multiple sessions can carry independent loggers.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger New builds. LogFile empty means
// console-only; otherwise a lumberjack-rotated file sink is added.
type Options struct {
	Level      string // debug, info, warn, error
	LogFile    string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// New builds a zap.Logger per Options. It never touches the global
// zap.L()/zap.ReplaceGlobals state — callers own the returned logger.
func New(opts Options) (*zap.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level),
	}
	if opts.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxAge:     orDefault(opts.MaxAgeDays, 14),
			MaxBackups: orDefault(opts.MaxBackups, 5),
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zap.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: parse level %q: %w", s, err)
	}
	return lvl, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
