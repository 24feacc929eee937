package redisrepl

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// fileConfig is the mapstructure shape viper unmarshals into, mirroring
// SyncdevWu-gokv/config/config.go's ServerConfig tagging style. Durations
// are plain seconds on the wire so YAML/JSON/env stay simple.
type fileConfig struct {
	Addr              string `mapstructure:"addr"`
	Password          string `mapstructure:"password"`
	ReplID            string `mapstructure:"repl_id"`
	ReplOffset        int64  `mapstructure:"repl_offset"`
	DiscardRDB        bool   `mapstructure:"is_discard_rdb"`
	AOF               bool   `mapstructure:"is_aof"`
	ReadTimeoutSec    int    `mapstructure:"read_timeout"`
	WriteTimeoutSec   int    `mapstructure:"write_timeout"`
	MaxBytesPerSecond int    `mapstructure:"max_bytes_per_second"`
	ListeningPort     int    `mapstructure:"listening_port"`
	AckIntervalSec    int    `mapstructure:"ack_interval"`
	LogFile           string `mapstructure:"log_file"`
	LogLevel          string `mapstructure:"log_level"`
}

func (fc fileConfig) toConfig() Config {
	return Config{
		Addr:              fc.Addr,
		Password:          fc.Password,
		ReplID:            fc.ReplID,
		ReplOffset:        fc.ReplOffset,
		DiscardRDB:        fc.DiscardRDB,
		AOF:               fc.AOF,
		ReadTimeout:       time.Duration(fc.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(fc.WriteTimeoutSec) * time.Second,
		MaxBytesPerSecond: fc.MaxBytesPerSecond,
		ListeningPort:     fc.ListeningPort,
		AckInterval:       time.Duration(fc.AckIntervalSec) * time.Second,
		LogFile:           fc.LogFile,
		LogLevel:          fc.LogLevel,
	}
}

// LoadConfig reads Config from path (YAML, JSON, or TOML — viper infers
// the format from the extension) via viper.Unmarshal, the same
// ReadInConfig/Unmarshal pair SyncdevWu-gokv/config/config.go uses.
// Library callers usually build Config directly in code instead.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("redisrepl: read config %q: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("redisrepl: unmarshal config %q: %w", path, err)
	}
	return fc.toConfig(), nil
}

// WatchConfig loads path once and invokes onChange with every subsequent
// reload, following SyncdevWu-gokv's viper.WatchConfig + OnConfigChange
// hot-reload pattern. addr/repl_id/repl_offset changes are ignored after
// the first load — a live session has already frozen those — and every
// other field is passed to onChange as reloaded. WatchConfig applies the
// reloaded values to nothing itself; a running Session keeps the Config
// it was built with.
func WatchConfig(path string, onChange func(Config)) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("redisrepl: read config %q: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("redisrepl: unmarshal config %q: %w", path, err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		var next fileConfig
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		next.Addr, next.ReplID, next.ReplOffset = fc.Addr, fc.ReplID, fc.ReplOffset
		onChange(next.toConfig())
	})

	return fc.toConfig(), nil
}
