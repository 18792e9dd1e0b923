package pointer

// GestureFSM is the per-hand six-state gesture machine (C2): hysteresis
// (Schmitt trigger) on confidence, asymmetric leaky-bucket dwell
// accumulation, and a coast/recovery sub-layer for transient confidence
// drops. It is pure: it never blocks, never allocates beyond its own fields,
// and never panics on malformed input — an unrecognized gesture tag is
// simply treated as non-matching.
type GestureFSM struct {
	tunables Tunables

	state FsmState

	dwellAccumulatorMs float64
	readyBucketMs      float64
	idleBucketMs       float64
	coastElapsedMs     float64

	lastFrameMs   float64
	haveLastFrame bool
}

// NewGestureFSM creates an FSM starting in IDLE with the given tunables.
func NewGestureFSM(t Tunables) *GestureFSM {
	return &GestureFSM{tunables: t, state: StateIdle}
}

// SetTunables hot-swaps the thresholds used on the next frame. The caller is
// responsible for validating t before calling this (see Tunables.Validate).
func (f *GestureFSM) SetTunables(t Tunables) {
	f.tunables = t
}

// State returns the current FsmState.
func (f *GestureFSM) State() FsmState { return f.state }

// IsPinching reports whether the FSM is in COMMIT_POINTER or COMMIT_COAST.
func (f *GestureFSM) IsPinching() bool {
	return f.state == StateCommitPointer || f.state == StateCommitCoast
}

// IsCoasting reports whether the FSM is in any of the three coast states.
func (f *GestureFSM) IsCoasting() bool {
	return f.state.isCoast()
}

// leak saturates v-delta at zero.
func leak(v, delta float64) float64 {
	v -= delta
	if v < 0 {
		return 0
	}
	return v
}

// Advance feeds one (gesture, confidence, nowMs) observation and returns the
// Transition if the state changed this frame (ok=false if it did not).
func (f *GestureFSM) Advance(gesture Gesture, confidence float64, nowMs float64) (Transition, bool) {
	confidence = clampConfidence(confidence)

	var dtMs float64
	if f.haveLastFrame {
		dtMs = nowMs - f.lastFrameMs
		if dtMs < 0 {
			dtMs = 0
		}
	}
	f.lastFrameMs = nowMs
	f.haveLastFrame = true

	prev := f.state
	t := f.tunables

	if f.state.isCoast() {
		f.coastElapsedMs += dtMs
		if f.coastElapsedMs >= t.CoastTimeoutMs {
			f.state = StateIdle
			f.dwellAccumulatorMs = 0
			f.readyBucketMs = 0
			f.idleBucketMs = 0
			f.coastElapsedMs = 0
		} else if confidence >= t.ConfHigh {
			f.state = f.state.parent()
			f.coastElapsedMs = 0
		}
	} else {
		f.coastElapsedMs = 0

		switch f.state {
		case StateIdle:
			f.advanceIdle(gesture, confidence, dtMs, t)
		case StateReady:
			f.advanceReady(gesture, confidence, dtMs, t)
		case StateCommitPointer:
			f.advanceCommit(gesture, confidence, dtMs, t)
		}
	}

	if f.state == prev {
		return Transition{}, false
	}
	return Transition{Previous: prev, Current: f.state}, true
}

func (f *GestureFSM) advanceIdle(gesture Gesture, confidence, dtMs float64, t Tunables) {
	if confidence < t.ConfLow {
		f.state = coastOf(f.state)
		return
	}

	highConf := confidence >= t.ConfHigh
	switch {
	case gesture == GestureClosedFist && highConf:
		f.dwellAccumulatorMs = 0
		f.readyBucketMs = 0
	case gesture == GestureOpenPalm && highConf:
		f.dwellAccumulatorMs += dtMs
		f.readyBucketMs += dtMs
	case !highConf || (highConf && gesture != GestureOpenPalm && gesture != GestureClosedFist):
		f.dwellAccumulatorMs = leak(f.dwellAccumulatorMs, 2*dtMs)
		f.readyBucketMs = leak(f.readyBucketMs, 2*dtMs)
	}

	if f.dwellAccumulatorMs >= t.DwellLimitReadyMs {
		f.state = StateReady
		f.dwellAccumulatorMs = 0
		f.readyBucketMs = 0
		f.idleBucketMs = 0
	}
}

func (f *GestureFSM) advanceReady(gesture Gesture, confidence, dtMs float64, t Tunables) {
	if confidence < t.ConfLow {
		f.state = coastOf(f.state)
		return
	}

	highConf := confidence >= t.ConfHigh
	switch {
	case gesture == GestureClosedFist && highConf:
		f.state = StateIdle
		f.dwellAccumulatorMs = 0
		return
	case gesture == GesturePointerUp && highConf:
		f.dwellAccumulatorMs += dtMs
	default:
		f.dwellAccumulatorMs = leak(f.dwellAccumulatorMs, 2*dtMs)
	}

	if f.dwellAccumulatorMs >= t.DwellLimitCommitMs {
		f.state = StateCommitPointer
		f.dwellAccumulatorMs = 0
	}
}

func (f *GestureFSM) advanceCommit(gesture Gesture, confidence, dtMs float64, t Tunables) {
	if confidence < t.ConfLow {
		f.state = coastOf(f.state)
		return
	}

	highConf := confidence >= t.ConfHigh
	switch {
	case gesture == GestureOpenPalm && highConf:
		f.dwellAccumulatorMs += dtMs
		f.readyBucketMs += dtMs
		f.idleBucketMs = 0
	case gesture == GestureClosedFist && highConf:
		f.dwellAccumulatorMs += dtMs
		f.idleBucketMs += dtMs
		f.readyBucketMs = 0
	default:
		f.dwellAccumulatorMs = leak(f.dwellAccumulatorMs, 2*dtMs)
		f.readyBucketMs = leak(f.readyBucketMs, 2*dtMs)
		f.idleBucketMs = leak(f.idleBucketMs, 2*dtMs)
	}

	if f.dwellAccumulatorMs >= t.DwellLimitCommitMs {
		if f.readyBucketMs >= f.idleBucketMs {
			f.state = StateReady
		} else {
			f.state = StateIdle
		}
		f.dwellAccumulatorMs = 0
		f.readyBucketMs = 0
		f.idleBucketMs = 0
	}
}

// DwellAccumulatorMs exposes the current dwell accumulator, mainly for tests
// and debug telemetry.
func (f *GestureFSM) DwellAccumulatorMs() float64 { return f.dwellAccumulatorMs }

// CoastElapsedMs exposes the current coast timer, mainly for tests and debug
// telemetry.
func (f *GestureFSM) CoastElapsedMs() float64 { return f.coastElapsedMs }
