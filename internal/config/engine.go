// Package config loads the engine's tuning knobs from YAML.
// Human-friendly string fields ("64mb", "30s") are parsed into raw
// numeric fields by a Validate() step. This covers the engine's own
// tuning surface (buffer capacity, pivots, thread counts); connection
// and auth configuration belong to the embedding application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the YAML-loadable tuning surface for one engine.Engine,
// matching the engine's configuration setters one-for-one.
type EngineConfig struct {
	MultiStream bool `yaml:"multi_stream"`

	MaxStreams       int     `yaml:"max_streams"`         // default: 4
	TriggerDomain    float64 `yaml:"trigger_domain"`      // default: 0
	MaxSourcesPerSub int     `yaml:"max_sources_per_sub"` // default: 8

	// MaxDuration is a human-friendly duration ("60s", "5m"); MaxDurationRaw
	// is the parsed value, filled in by Validate(), not read from YAML.
	MaxDuration    string        `yaml:"max_duration"` // default: "60s"
	MaxDurationRaw time.Duration `yaml:"-"`

	CorrelateMidStream   bool `yaml:"correlate_mid_stream"`   // default: true
	CorrelateConcurrency bool `yaml:"correlate_concurrency"`  // default: false
	CorrelatePivot       int  `yaml:"correlate_pivot"`        // default: 64
	CorrelateThreads     int  `yaml:"correlate_threads"`      // default: 4

	AllowDomainCollisions bool `yaml:"allow_domain_collisions"` // default: false

	AssemblerConcurrency bool `yaml:"assembler_concurrency"` // default: false
	AssemblerPivot       int  `yaml:"assembler_pivot"`       // default: 8

	ErrorChecking bool `yaml:"error_checking"` // default: true

	// EnqueueRateLimit is messages/sec for the MessageBuffer's token
	// bucket; 0 (or absent) disables throttling.
	EnqueueRateLimit float64 `yaml:"enqueue_rate_limit"`

	// BufferCapacity is a human-friendly size. "0" or absent means
	// auto-size from system memory via msgbuffer.AutoCapacity; any other
	// value is a slot count or a byte-size suffix converted to one (the
	// buffer holds decoded messages, not raw bytes).
	BufferCapacity    string `yaml:"buffer_capacity"`
	BufferCapacityRaw int64  `yaml:"-"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the log level, output format and optional file
// sink.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error, default info
	Format string `yaml:"format"` // json|text, default json
	File   string `yaml:"file"`   // optional file sink path
}

// DefaultEngineConfig returns the same defaults engine.defaultConfig
// bakes in, so a zero-value YAML document ("{}") still validates to a
// usable configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MultiStream:          true,
		MaxStreams:           4,
		TriggerDomain:        0,
		MaxSourcesPerSub:     8,
		MaxDuration:          "60s",
		CorrelateMidStream:   true,
		CorrelateConcurrency: false,
		CorrelatePivot:       64,
		CorrelateThreads:     4,
		AssemblerConcurrency: false,
		AssemblerPivot:       8,
		ErrorChecking:        true,
		BufferCapacity:       "0",
		Logging:              LoggingConfig{Level: "info", Format: "json"},
	}
}

// LoadEngineConfig reads and validates an EngineConfig from a YAML file,
// filling in defaults for absent fields.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine config: %w", err)
	}

	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating engine config: %w", err)
	}
	return &cfg, nil
}

// Validate fills in raw fields parsed from human-friendly strings and
// rejects out-of-range values.
func (c *EngineConfig) Validate() error {
	if c.MaxStreams <= 0 {
		return fmt.Errorf("max_streams must be > 0, got %d", c.MaxStreams)
	}
	if c.TriggerDomain < 0 {
		return fmt.Errorf("trigger_domain must be >= 0, got %g", c.TriggerDomain)
	}
	if c.MaxSourcesPerSub <= 0 {
		return fmt.Errorf("max_sources_per_sub must be > 0, got %d", c.MaxSourcesPerSub)
	}

	if c.MaxDuration == "" {
		c.MaxDuration = "60s"
	}
	d, err := time.ParseDuration(c.MaxDuration)
	if err != nil {
		return fmt.Errorf("max_duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("max_duration must be > 0, got %s", c.MaxDuration)
	}
	c.MaxDurationRaw = d

	if c.CorrelatePivot <= 0 {
		c.CorrelatePivot = 64
	}
	if c.CorrelateThreads <= 0 {
		c.CorrelateThreads = 4
	}
	if c.AssemblerPivot <= 0 {
		c.AssemblerPivot = 8
	}
	if c.EnqueueRateLimit < 0 {
		return fmt.Errorf("enqueue_rate_limit must be >= 0, got %g", c.EnqueueRateLimit)
	}

	if c.BufferCapacity == "" || c.BufferCapacity == "0" {
		c.BufferCapacityRaw = 0
	} else {
		n, err := parseSlotCount(c.BufferCapacity)
		if err != nil {
			return fmt.Errorf("buffer_capacity: %w", err)
		}
		c.BufferCapacityRaw = n
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	return nil
}

// parseSlotCount accepts either a plain integer slot count or a
// byte-size suffix ("kb"/"mb"/"gb") for callers who'd rather size the
// buffer in bytes than in message slots.
func parseSlotCount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	type suffix struct {
		s string
		m int64
	}
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
	}
	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q: %w", numStr, err)
			}
			// Convert a byte budget to an approximate slot count using
			// the same avgMessageBytes assumption as msgbuffer.AutoCapacity.
			return (num * sfx.m) / (4 * 1024), nil
		}
	}
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown buffer_capacity format %q", s)
	}
	return num, nil
}
