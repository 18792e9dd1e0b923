package pointer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const frameDtMs = 1000.0 / 30.0 // 33.33ms, matching spec's 30Hz scenarios

func advanceN(f *GestureFSM, gesture Gesture, confidence float64, n int, startMs float64) float64 {
	now := startMs
	for i := 0; i < n; i++ {
		f.Advance(gesture, confidence, now)
		now += frameDtMs
	}
	return now
}

func TestFSMStartsIdle(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	require.Equal(t, StateIdle, f.State())
	require.False(t, f.IsPinching())
	require.False(t, f.IsCoasting())
}

func TestFSMHappyPathReadyCommitRelease(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())

	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State(), "sustained high-confidence open_palm should reach READY")

	now = advanceN(f, GesturePointerUp, 0.9, 10, now)
	require.Equal(t, StateCommitPointer, f.State(), "sustained high-confidence pointer_up should commit")
	require.True(t, f.IsPinching())

	_ = advanceN(f, GestureOpenPalm, 0.9, 10, now)
	require.Equal(t, StateReady, f.State(), "open_palm release should return to READY (ready_bucket > idle_bucket)")
	require.False(t, f.IsPinching())
}

func TestFSMClosedFistReleaseGoesIdle(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	now = advanceN(f, GesturePointerUp, 0.9, 10, now)
	require.Equal(t, StateCommitPointer, f.State())

	_ = advanceN(f, GestureClosedFist, 0.9, 10, now)
	require.Equal(t, StateIdle, f.State(), "closed_fist release should return to IDLE (idle_bucket > ready_bucket)")
}

func TestFSMHysteresisBandHoldsNoCommit(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	_ = advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	// Mid-band confidence: no positive accumulation, dwell stays at 0.
	now := 10 * frameDtMs
	for i := 0; i < 20; i++ {
		f.Advance(GesturePointerUp, 0.55, now)
		now += frameDtMs
	}
	require.Equal(t, StateReady, f.State(), "hysteresis band must not accumulate dwell toward commit")
	require.Equal(t, 0.0, f.DwellAccumulatorMs())
}

func TestFSMClosedFistDeniesReadyImmediately(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	_ = advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	now := 10 * frameDtMs
	tr, changed := f.Advance(GestureClosedFist, 0.9, now)
	require.True(t, changed)
	require.Equal(t, StateIdle, tr.Current)
	require.Equal(t, 0.0, f.DwellAccumulatorMs())
}

func TestFSMLowConfidenceEntersCoastFromEachActiveState(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *GestureFSM) float64
		coast FsmState
	}{
		{"fromIdle", func(f *GestureFSM) float64 { return 0 }, StateIdleCoast},
		{"fromReady", func(f *GestureFSM) float64 { return advanceN(f, GestureOpenPalm, 0.9, 10, 0) }, StateReadyCoast},
		{"fromCommit", func(f *GestureFSM) float64 {
			now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
			return advanceN(f, GesturePointerUp, 0.9, 10, now)
		}, StateCommitCoast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewGestureFSM(DefaultTunables())
			now := tc.setup(f)

			tr, changed := f.Advance(GestureOther, 0.1, now)
			require.True(t, changed)
			require.Equal(t, tc.coast, tr.Current)
		})
	}
}

func TestFSMCoastRecoversToParentOnHighConfidence(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	f.Advance(GestureOther, 0.1, now)
	require.Equal(t, StateReadyCoast, f.State())
	now += frameDtMs

	f.Advance(GesturePointerUp, 0.9, now)
	require.Equal(t, StateReady, f.State(), "confidence recovery above conf_high should return to the coast parent")
}

func TestFSMCoastTimeoutHardResetsToIdle(t *testing.T) {
	tunables := DefaultTunables()
	f := NewGestureFSM(tunables)
	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	f.Advance(GestureOther, 0.1, now)
	require.Equal(t, StateReadyCoast, f.State())

	// Hold low confidence well past CoastTimeoutMs without ever recovering.
	now += tunables.CoastTimeoutMs + frameDtMs
	tr, changed := f.Advance(GestureOther, 0.1, now)
	require.True(t, changed)
	require.Equal(t, StateIdle, tr.Current, "coast timeout must hard-reset to IDLE regardless of prior parent")
	require.Equal(t, 0.0, f.CoastElapsedMs())
}

func TestFSMCommitReleaseFavorsMostRecentDominantBucket(t *testing.T) {
	f := NewGestureFSM(DefaultTunables())
	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())
	now = advanceN(f, GesturePointerUp, 0.9, 10, now)
	require.Equal(t, StateCommitPointer, f.State())

	// Touch closed_fist briefly (idle_bucket > 0) then settle back on
	// open_palm for long enough to dominate and cross the release threshold:
	// the most recently dominant gesture's bucket must win, not a frozen
	// earlier snapshot.
	now = advanceN(f, GestureClosedFist, 0.9, 1, now)
	require.Equal(t, StateCommitPointer, f.State(), "single frame must not release yet")

	_ = advanceN(f, GestureOpenPalm, 0.9, 10, now)
	require.Equal(t, StateReady, f.State(), "sustained open_palm afterward should still release to READY")
}

func TestFSMCommitReleaseTieFavorsReady(t *testing.T) {
	// Both buckets start (and, absent any dominant gesture, stay) at zero
	// once COMMIT_POINTER is entered, so a release evaluated on the very
	// first frame is an exact ready_bucket_ms == idle_bucket_ms tie.
	tunables := DefaultTunables()
	tunables.DwellLimitCommitMs = 0
	f := NewGestureFSM(tunables)

	now := advanceN(f, GestureOpenPalm, 0.9, 10, 0)
	require.Equal(t, StateReady, f.State())

	now = advanceN(f, GesturePointerUp, 0.9, 1, now)
	require.Equal(t, StateCommitPointer, f.State())

	tr, changed := f.Advance(GestureOther, 0.9, now)
	require.True(t, changed)
	require.Equal(t, StateReady, tr.Current, "an exact bucket tie must favor READY")
}
