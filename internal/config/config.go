// Package config holds the server settings. Values come from DefaultConfig,
// then an optional JSON file, then command line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jaminalder/codex-renju/internal/board"
)

type Config struct {
	Addr      string `json:"addr"`
	BoardSize int    `json:"board_size"`

	// DBPath selects the SQLite store. Empty keeps everything in memory.
	DBPath string `json:"db_path"`

	HeartbeatMs       int   `json:"heartbeat_ms"`
	ShutdownTimeoutMs int   `json:"shutdown_timeout_ms"`
	MaxLibraryBytes   int64 `json:"max_library_bytes"`

	// EnforceForbidden rejects Black moves onto forbidden points.
	EnforceForbidden bool `json:"enforce_forbidden"`
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		BoardSize:         board.DefaultSize,
		HeartbeatMs:       15000,
		ShutdownTimeoutMs: 5000,
		MaxLibraryBytes:   4 << 20,
		EnforceForbidden:  true,
	}
}

func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}

func (c Config) Validate() error {
	if c.BoardSize < board.MinSize || c.BoardSize > board.MaxSize {
		return fmt.Errorf("board_size %d outside %d..%d", c.BoardSize, board.MinSize, board.MaxSize)
	}
	if c.HeartbeatMs <= 0 {
		return fmt.Errorf("heartbeat_ms must be positive")
	}
	if c.ShutdownTimeoutMs < 0 {
		return fmt.Errorf("shutdown_timeout_ms must not be negative")
	}
	if c.MaxLibraryBytes <= 0 {
		return fmt.Errorf("max_library_bytes must be positive")
	}
	return nil
}

// Load reads path over the defaults. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Store shares a Config between goroutines.
type Store struct {
	mu     sync.RWMutex
	config Config
}

func NewStore(c Config) *Store {
	return &Store{config: c}
}

func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *Store) Update(c Config) {
	s.mu.Lock()
	s.config = c
	s.mu.Unlock()
}
