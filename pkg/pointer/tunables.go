package pointer

import "fmt"

// Tunables holds every hot-reconfigurable parameter consumed by the FSM,
// smoother and fabric. A single record is swapped atomically by the caller
// (see internal/config.Watcher) rather than mutating individual fields, so
// the core never observes a half-applied configuration mid-frame.
type Tunables struct {
	ConfHigh float64
	ConfLow  float64

	DwellLimitReadyMs  float64
	DwellLimitCommitMs float64
	CoastTimeoutMs     float64

	KalmanQ float64
	KalmanR float64

	TeleportThresholdNormalized float64
	OverscanScale               float64

	HoverEnabled bool
}

// DefaultTunables returns the defaults named in spec §4.2 and §4.5.
func DefaultTunables() Tunables {
	return Tunables{
		ConfHigh:                    0.64,
		ConfLow:                     0.50,
		DwellLimitReadyMs:           100,
		DwellLimitCommitMs:          100,
		CoastTimeoutMs:              500,
		KalmanQ:                     0.01,
		KalmanR:                     0.1,
		TeleportThresholdNormalized: 0.1,
		OverscanScale:               1.0,
		HoverEnabled:                false,
	}
}

// Validate rejects configuration drift (spec §7.2): a tunable set out of
// range. Callers that fail validation MUST retain the previously-applied
// Tunables rather than adopt the rejected one.
func (t Tunables) Validate() error {
	if t.ConfLow < 0 || t.ConfLow > 1 {
		return fmt.Errorf("conf_low must be in [0,1], got %f", t.ConfLow)
	}
	if t.ConfHigh < 0 || t.ConfHigh > 1 {
		return fmt.Errorf("conf_high must be in [0,1], got %f", t.ConfHigh)
	}
	if t.ConfLow > t.ConfHigh {
		return fmt.Errorf("conf_low (%f) must not exceed conf_high (%f)", t.ConfLow, t.ConfHigh)
	}
	if t.DwellLimitReadyMs < 0 {
		return fmt.Errorf("dwell_limit_ready_ms must be >= 0, got %f", t.DwellLimitReadyMs)
	}
	if t.DwellLimitCommitMs < 0 {
		return fmt.Errorf("dwell_limit_commit_ms must be >= 0, got %f", t.DwellLimitCommitMs)
	}
	if t.CoastTimeoutMs < 0 {
		return fmt.Errorf("coast_timeout_ms must be >= 0, got %f", t.CoastTimeoutMs)
	}
	if t.KalmanQ <= 0 {
		return fmt.Errorf("kalman_q must be positive, got %f", t.KalmanQ)
	}
	if t.KalmanR <= 0 {
		return fmt.Errorf("kalman_r must be positive, got %f", t.KalmanR)
	}
	if t.TeleportThresholdNormalized < 0 {
		return fmt.Errorf("teleport_threshold_normalized must be >= 0, got %f", t.TeleportThresholdNormalized)
	}
	if t.OverscanScale <= 0 {
		return fmt.Errorf("overscan_scale must be positive, got %f", t.OverscanScale)
	}
	return nil
}
