package pointer

import "math"

// axisFilter is a scalar Kalman filter for one normalized axis. It is the
// single-axis analogue of the teacher's KalmanFilter, with an added
// non-finite-input gate and a hard reset on non-finite internal state: the
// teacher's filter trusted its inputs, but a hand-tracking stream can hand
// the core a NaN fingertip coordinate on a bad detector frame and the core
// must never propagate that forward (spec §4.1).
type axisFilter struct {
	x, p        float64
	q, r        float64
	initialized bool
}

func newAxisFilter(q, r float64) axisFilter {
	return axisFilter{q: q, r: r}
}

// filter feeds one measurement and returns the smoothed estimate.
func (f *axisFilter) filter(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		if !f.initialized {
			return 0
		}
		return f.x
	}

	if !f.initialized {
		f.x = z
		f.p = f.r
		f.initialized = true
		return f.x
	}

	if math.IsNaN(f.x) || math.IsInf(f.x, 0) || math.IsNaN(f.p) || math.IsInf(f.p, 0) {
		f.x = z
		f.p = f.r
		return f.x
	}

	pPred := f.p + f.q
	k := pPred / (pPred + f.r)
	f.x = f.x + k*(z-f.x)
	f.p = (1 - k) * pPred

	return f.x
}

// predict projects the current estimate forward without updating state.
// With a constant-position model (A=1, no control input) the projection is
// simply the current filtered value, held for every future step.
func (f *axisFilter) predict(steps int) float64 {
	_ = steps
	if !f.initialized {
		return 0
	}
	return f.x
}

// Smoother denoises a single normalized 2D coordinate stream (C1).
type Smoother struct {
	x, y axisFilter
}

// NewSmoother creates a per-axis Kalman smoother with the given process and
// measurement noise.
func NewSmoother(q, r float64) *Smoother {
	return &Smoother{
		x: newAxisFilter(q, r),
		y: newAxisFilter(q, r),
	}
}

// Filter feeds one (x, y) observation and returns the smoothed estimate. The
// first call seeds state from the measurement; non-finite measurements are
// rejected without mutating state.
func (s *Smoother) Filter(x, y float64) (float64, float64) {
	return s.x.filter(x), s.y.filter(y)
}

// Predict projects the current filtered state forward by steps frames
// without updating it.
func (s *Smoother) Predict(steps int) (float64, float64) {
	return s.x.predict(steps), s.y.predict(steps)
}

// Reset clears filter state, e.g. when a new hand reclaims a pruned slot.
func (s *Smoother) Reset() {
	s.x = newAxisFilter(s.x.q, s.x.r)
	s.y = newAxisFilter(s.y.q, s.y.r)
}
