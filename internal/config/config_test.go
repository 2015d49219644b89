package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renjud.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	cfg, err := Load(writeFile(t, `{"addr": ":9000", "board_size": 19, "heartbeat_ms": 250}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.BoardSize != 19 || cfg.Heartbeat() != 250*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.EnforceForbidden || cfg.MaxLibraryBytes != DefaultConfig().MaxLibraryBytes {
		t.Fatalf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"syntax":     `{"addr": `,
		"board size": `{"board_size": 40}`,
		"heartbeat":  `{"heartbeat_ms": 0}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore(DefaultConfig())
	cfg := s.Get()
	cfg.EnforceForbidden = false
	if !s.Get().EnforceForbidden {
		t.Fatalf("Get should return a copy")
	}
	s.Update(cfg)
	if s.Get().EnforceForbidden {
		t.Fatalf("Update not visible")
	}
}
