// Package config defines the skitter configuration schema, its defaults
// and validation, and the hot-swap applier that feeds changes into a
// running engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skitterwm/skitter/internal/anim"
	"github.com/skitterwm/skitter/internal/placement"
)

// ValidationError reports the config field that failed validation.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Proximity configures the push geometry, in logical pixels.
type Proximity struct {
	ThresholdPx    float64 `yaml:"threshold_px"`
	PushDistancePx float64 `yaml:"push_distance_px"`
}

// Hover configures hover-timeout suppression.
type Hover struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMs int  `yaml:"timeout_ms"`
}

// Animation configures the animated mover.
type Animation struct {
	Enabled    bool        `yaml:"enabled"`
	DurationMs int         `yaml:"duration_ms"`
	Easing     anim.Easing `yaml:"easing"`
}

// Wrap configures the edge-wrap resolver.
type Wrap struct {
	Enabled         bool               `yaml:"enabled"`
	Mode            placement.WrapMode `yaml:"mode"`
	RespectWorkArea bool               `yaml:"respect_work_area"`
}

// Engine configures the polling loop.
type Engine struct {
	PollIntervalMs    int  `yaml:"poll_interval_ms"`
	ApplyToAllWindows bool `yaml:"apply_to_all_windows"`
	CtrlOverride      bool `yaml:"ctrl_override"`
	EdgeBufferPx      int  `yaml:"edge_buffer_px"`
}

// Recovery configures the per-collaborator circuit breakers.
type Recovery struct {
	FailureThreshold int `yaml:"failure_threshold"`
	MaxRetries       int `yaml:"max_retries"`
	RetryBackoffMs   int `yaml:"retry_backoff_ms"`
	CooldownMs       int `yaml:"cooldown_ms"`
}

// Config is the full on-disk configuration.
type Config struct {
	Proximity Proximity `yaml:"proximity"`
	Hover     Hover     `yaml:"hover"`
	Animation Animation `yaml:"animation"`
	Wrap      Wrap      `yaml:"wrap"`
	Engine    Engine    `yaml:"engine"`
	Recovery  Recovery  `yaml:"recovery"`
	LogLevel  string    `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Proximity: Proximity{
			ThresholdPx:    50,
			PushDistancePx: 100,
		},
		Hover: Hover{
			Enabled:   true,
			TimeoutMs: 2000,
		},
		Animation: Animation{
			Enabled:    true,
			DurationMs: 150,
			Easing:     anim.EaseOut,
		},
		Wrap: Wrap{
			Enabled:         true,
			Mode:            placement.WrapSmart,
			RespectWorkArea: true,
		},
		Engine: Engine{
			PollIntervalMs: 16,
			CtrlOverride:   true,
			EdgeBufferPx:   10,
		},
		Recovery: Recovery{
			FailureThreshold: 5,
			MaxRetries:       3,
			RetryBackoffMs:   100,
			CooldownMs:       30000,
		},
		LogLevel: "info",
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "skitter", "config.yaml"), nil
}

// Load reads the config from the standard location, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file. A missing file yields
// the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field is in range. Invalid configs are rejected
// wholesale; nothing from a config that fails here is ever applied.
func (c *Config) Validate() error {
	if c.Proximity.ThresholdPx <= 0 {
		return &ValidationError{Path: "proximity.threshold_px", Err: fmt.Errorf("must be > 0")}
	}
	if c.Proximity.PushDistancePx <= 0 {
		return &ValidationError{Path: "proximity.push_distance_px", Err: fmt.Errorf("must be > 0")}
	}
	if c.Hover.TimeoutMs <= 0 {
		return &ValidationError{Path: "hover.timeout_ms", Err: fmt.Errorf("must be > 0")}
	}
	if c.Animation.DurationMs <= 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("must be > 0")}
	}
	if !c.Animation.Easing.Valid() {
		return &ValidationError{Path: "animation.easing", Err: fmt.Errorf("must be one of: linear, ease-in, ease-out, ease-in-out")}
	}
	if !c.Wrap.Mode.Valid() {
		return &ValidationError{Path: "wrap.mode", Err: fmt.Errorf("must be one of: adjacent, opposite, smart")}
	}
	if c.Engine.PollIntervalMs < 4 {
		return &ValidationError{Path: "engine.poll_interval_ms", Err: fmt.Errorf("must be >= 4")}
	}
	if c.Engine.EdgeBufferPx < 0 {
		return &ValidationError{Path: "engine.edge_buffer_px", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Recovery.FailureThreshold < 1 {
		return &ValidationError{Path: "recovery.failure_threshold", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Recovery.MaxRetries < 1 {
		return &ValidationError{Path: "recovery.max_retries", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Recovery.RetryBackoffMs < 0 {
		return &ValidationError{Path: "recovery.retry_backoff_ms", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Recovery.CooldownMs < 0 {
		return &ValidationError{Path: "recovery.cooldown_ms", Err: fmt.Errorf("must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("must be one of: debug, info, warn, error")}
	}
	return nil
}

// PollInterval returns the engine tick cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Engine.PollIntervalMs) * time.Millisecond
}

// AnimationDuration returns the mover duration.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMs) * time.Millisecond
}

// HoverTimeout returns the suppression timeout.
func (c *Config) HoverTimeout() time.Duration {
	return time.Duration(c.Hover.TimeoutMs) * time.Millisecond
}

// RetryBackoff returns the recovery retry backoff.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Recovery.RetryBackoffMs) * time.Millisecond
}

// Cooldown returns the breaker cooldown.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Recovery.CooldownMs) * time.Millisecond
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
