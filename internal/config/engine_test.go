package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEngineConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.MaxStreams != 4 {
		t.Errorf("MaxStreams = %d, want 4", cfg.MaxStreams)
	}
	if cfg.MaxDurationRaw.Seconds() != 60 {
		t.Errorf("MaxDurationRaw = %v, want 60s", cfg.MaxDurationRaw)
	}
	if !cfg.ErrorChecking {
		t.Errorf("ErrorChecking default should be true")
	}
	if cfg.BufferCapacityRaw != 0 {
		t.Errorf("BufferCapacityRaw = %d, want 0 (auto)", cfg.BufferCapacityRaw)
	}
}

func TestLoadEngineConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yamlBody := `
max_streams: 8
max_sources_per_sub: 16
max_duration: 30s
correlate_concurrency: true
error_checking: false
buffer_capacity: 4mb
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.MaxStreams != 8 {
		t.Errorf("MaxStreams = %d, want 8", cfg.MaxStreams)
	}
	if cfg.MaxDurationRaw.Seconds() != 30 {
		t.Errorf("MaxDurationRaw = %v, want 30s", cfg.MaxDurationRaw)
	}
	if cfg.ErrorChecking {
		t.Errorf("ErrorChecking should be false")
	}
	wantSlots := int64(4*1024*1024) / (4 * 1024)
	if cfg.BufferCapacityRaw != wantSlots {
		t.Errorf("BufferCapacityRaw = %d, want %d", cfg.BufferCapacityRaw, wantSlots)
	}
}

func TestEngineConfig_Validate_RejectsInvalid(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.MaxStreams = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_streams=0")
	}
}

func TestEngineConfig_ToExternal(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ext := cfg.ToExternal()
	if ext.MaxStreams != cfg.MaxStreams {
		t.Errorf("MaxStreams mismatch: %d vs %d", ext.MaxStreams, cfg.MaxStreams)
	}
	if ext.MaxDurationPerSub != cfg.MaxDurationRaw {
		t.Errorf("MaxDurationPerSub mismatch: %v vs %v", ext.MaxDurationPerSub, cfg.MaxDurationRaw)
	}
}
