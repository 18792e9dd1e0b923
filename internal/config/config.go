// Package config provides TOML configuration loading and hot-reload for
// handpointer, following the teacher's internal/config package structure
// (MiFaceDEV/miface): a Default(), a Load(path) that falls back to defaults
// on a missing file, and a Validate() re-run on every apply.
//
// The configuration file supports the following structure:
//
//	[gesture]
//	conf_high = 0.64
//	conf_low = 0.50
//	dwell_limit_ready_ms = 100
//	dwell_limit_commit_ms = 100
//	coast_timeout_ms = 500
//
//	[kalman]
//	q = 0.01
//	r = 0.1
//
//	[fabric]
//	teleport_threshold_normalized = 0.1
//	overscan_scale = 1.0
//	hover_enabled = false
//
//	[highlander]
//	enabled = false
//	lock_on_commit_only = false
//	drop_hover_events = false
//
//	[router]
//	prune_grace_ms = 500
//
//	[debug_surface]
//	enabled = false
//	address = "127.0.0.1"
//	port = 39540
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/handpointer/core/pkg/pointer"
)

// GestureConfig mirrors pointer.Tunables' FSM-facing fields.
type GestureConfig struct {
	ConfHigh           float64 `toml:"conf_high"`
	ConfLow            float64 `toml:"conf_low"`
	DwellLimitReadyMs  float64 `toml:"dwell_limit_ready_ms"`
	DwellLimitCommitMs float64 `toml:"dwell_limit_commit_ms"`
	CoastTimeoutMs     float64 `toml:"coast_timeout_ms"`
}

// KalmanConfig mirrors pointer.Tunables' smoother-facing fields.
type KalmanConfig struct {
	Q float64 `toml:"q"`
	R float64 `toml:"r"`
}

// FabricConfig mirrors pointer.Tunables' fabric-facing fields.
type FabricConfig struct {
	TeleportThresholdNormalized float64 `toml:"teleport_threshold_normalized"`
	OverscanScale               float64 `toml:"overscan_scale"`
	HoverEnabled                bool    `toml:"hover_enabled"`
}

// HighlanderConfig controls whether the single-pointer mutex is engaged and
// its two policy flags.
type HighlanderConfig struct {
	Enabled          bool `toml:"enabled"`
	LockOnCommitOnly bool `toml:"lock_on_commit_only"`
	DropHoverEvents  bool `toml:"drop_hover_events"`
}

// RouterConfig controls the hand router's prune grace window.
type RouterConfig struct {
	PruneGraceMs float64 `toml:"prune_grace_ms"`
}

// DebugSurfaceConfig controls the optional UDP telemetry sink.
type DebugSurfaceConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// Config is the complete hot-reconfigurable configuration for handpointer.
type Config struct {
	Gesture      GestureConfig      `toml:"gesture"`
	Kalman       KalmanConfig       `toml:"kalman"`
	Fabric       FabricConfig       `toml:"fabric"`
	Highlander   HighlanderConfig   `toml:"highlander"`
	Router       RouterConfig       `toml:"router"`
	DebugSurface DebugSurfaceConfig `toml:"debug_surface"`
}

// Default returns the default configuration, matching pointer.DefaultTunables.
func Default() *Config {
	t := pointer.DefaultTunables()
	return &Config{
		Gesture: GestureConfig{
			ConfHigh:           t.ConfHigh,
			ConfLow:            t.ConfLow,
			DwellLimitReadyMs:  t.DwellLimitReadyMs,
			DwellLimitCommitMs: t.DwellLimitCommitMs,
			CoastTimeoutMs:     t.CoastTimeoutMs,
		},
		Kalman: KalmanConfig{
			Q: t.KalmanQ,
			R: t.KalmanR,
		},
		Fabric: FabricConfig{
			TeleportThresholdNormalized: t.TeleportThresholdNormalized,
			OverscanScale:               t.OverscanScale,
			HoverEnabled:                t.HoverEnabled,
		},
		Highlander: HighlanderConfig{
			Enabled:          false,
			LockOnCommitOnly: false,
			DropHoverEvents:  false,
		},
		Router: RouterConfig{
			PruneGraceMs: 500,
		},
		DebugSurface: DebugSurfaceConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    39540,
		},
	}
}

// Load reads and parses a TOML configuration file. If the file does not
// exist, it returns the default configuration, matching the teacher's
// config.Load fallback behavior.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Tunables projects the gesture/kalman/fabric sections into a
// pointer.Tunables record.
func (c *Config) Tunables() pointer.Tunables {
	return pointer.Tunables{
		ConfHigh:                    c.Gesture.ConfHigh,
		ConfLow:                     c.Gesture.ConfLow,
		DwellLimitReadyMs:           c.Gesture.DwellLimitReadyMs,
		DwellLimitCommitMs:          c.Gesture.DwellLimitCommitMs,
		CoastTimeoutMs:              c.Gesture.CoastTimeoutMs,
		KalmanQ:                     c.Kalman.Q,
		KalmanR:                     c.Kalman.R,
		TeleportThresholdNormalized: c.Fabric.TeleportThresholdNormalized,
		OverscanScale:               c.Fabric.OverscanScale,
		HoverEnabled:                c.Fabric.HoverEnabled,
	}
}

// Validate checks the configuration for invalid values, rejecting the
// config-drift failure mode named in spec §7.2.
func (c *Config) Validate() error {
	if err := c.Tunables().Validate(); err != nil {
		return err
	}
	if c.Router.PruneGraceMs < 500 {
		return fmt.Errorf("router.prune_grace_ms must be >= 500, got %f", c.Router.PruneGraceMs)
	}
	if c.DebugSurface.Enabled {
		if c.DebugSurface.Port <= 0 || c.DebugSurface.Port > 65535 {
			return fmt.Errorf("debug_surface.port must be between 1 and 65535, got %d", c.DebugSurface.Port)
		}
		if c.DebugSurface.Address == "" {
			return fmt.Errorf("debug_surface.address must be set when debug_surface.enabled is true")
		}
	}
	return nil
}
