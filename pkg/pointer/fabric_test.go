package pointer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func handState(id int, x, y float64, pinching, coasting bool) HandState {
	return HandState{HandID: id, X: x, Y: y, IsPinching: pinching, IsCoasting: coasting}
}

func TestFabricNewPinchingHandEmitsDown(t *testing.T) {
	fb := NewFabric(DefaultTunables())

	events := fb.Process([]HandState{handState(3, 0.5, 0.5, true, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerDown, events[0].Type)
	require.Equal(t, pointerIDBase+3, events[0].PointerID)
	require.Equal(t, 1, events[0].Buttons)
}

func TestFabricNewHoveringHandSuppressedByDefault(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	events := fb.Process([]HandState{handState(1, 0.5, 0.5, false, false)})
	require.Empty(t, events, "hover disabled by default means a non-pinching new hand emits nothing")
}

func TestFabricNewHoveringHandEmitsMoveWhenHoverEnabled(t *testing.T) {
	tunables := DefaultTunables()
	tunables.HoverEnabled = true
	fb := NewFabric(tunables)

	events := fb.Process([]HandState{handState(1, 0.5, 0.5, false, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerMove, events[0].Type)
}

func TestFabricPinchReleaseEmitsUp(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	fb.Process([]HandState{handState(1, 0.5, 0.5, true, false)})

	events := fb.Process([]HandState{handState(1, 0.5, 0.5, false, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerUp, events[0].Type)
	require.Equal(t, 0, events[0].Buttons)
}

func TestFabricMoveBelowEpsilonIsCoalesced(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	fb.Process([]HandState{handState(1, 0.5, 0.5, true, false)})

	events := fb.Process([]HandState{handState(1, 0.5+1e-6, 0.5, true, false)})
	require.Empty(t, events, "sub-epsilon movement must not emit a pointermove")
}

func TestFabricMoveAboveEpsilonEmitsMove(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	fb.Process([]HandState{handState(1, 0.5, 0.5, true, false)})

	events := fb.Process([]HandState{handState(1, 0.55, 0.5, true, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerMove, events[0].Type)
}

func TestFabricGhostDrawTeleportGateSplitsAcrossTwoFrames(t *testing.T) {
	tunables := DefaultTunables()
	tunables.TeleportThresholdNormalized = 0.1
	fb := NewFabric(tunables)

	// Establish a pinching, coasting hand at one position.
	fb.Process([]HandState{handState(1, 0.1, 0.1, true, true)})
	fb.Process([]HandState{handState(1, 0.1, 0.1, true, true)})

	// Recovery jump: still pinching, no longer coasting, far from last position.
	events := fb.Process([]HandState{handState(1, 0.9, 0.9, true, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerUp, events[0].Type, "large post-coast jump must close out the old position first")
	require.InDelta(t, 0.1, events[0].X, 1e-9)

	// Next frame: the deferred pointerdown at the new position, with no
	// intervening pointermove.
	events = fb.Process([]HandState{handState(1, 0.9, 0.9, true, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerDown, events[0].Type)
	require.InDelta(t, 0.9, events[0].X, 1e-9)
}

func TestFabricSmallJumpAfterCoastDoesNotTeleport(t *testing.T) {
	tunables := DefaultTunables()
	tunables.TeleportThresholdNormalized = 0.5
	fb := NewFabric(tunables)

	fb.Process([]HandState{handState(1, 0.1, 0.1, true, true)})
	events := fb.Process([]HandState{handState(1, 0.15, 0.1, true, false)})
	require.Len(t, events, 1)
	require.Equal(t, EventPointerMove, events[0].Type, "a small jump within threshold is a normal move, not a teleport")
}

func TestFabricDestroyEmitsUpForPinchingHand(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	fb.Process([]HandState{handState(1, 0.5, 0.5, true, false)})

	events := fb.Destroy(1)
	require.Len(t, events, 1)
	require.Equal(t, EventPointerUp, events[0].Type)

	// Second destroy is a no-op, the slot is already gone.
	require.Empty(t, fb.Destroy(1))
}

func TestFabricDestroyAllIsSortedAndClosesEveryPointer(t *testing.T) {
	fb := NewFabric(DefaultTunables())
	fb.Process([]HandState{
		handState(5, 0.1, 0.1, true, false),
		handState(2, 0.2, 0.2, true, false),
	})

	events := fb.DestroyAll()
	require.Len(t, events, 2)
	require.Equal(t, 2, events[0].HandID)
	require.Equal(t, 5, events[1].HandID)
}

func TestOverscanIdentityAtScaleOne(t *testing.T) {
	require.InDelta(t, 0.3, Overscan(0.3, 1.0), 1e-9)
}

func TestOverscanCentersAroundMidpoint(t *testing.T) {
	// At scale 2, the visible midpoint 0.5 must map back to 0.5.
	require.InDelta(t, 0.5, Overscan(0.5, 2.0), 1e-9)
}

func TestOverscanNonPositiveScaleFallsBackToIdentity(t *testing.T) {
	require.InDelta(t, 0.42, Overscan(0.42, 0), 1e-9)
	require.InDelta(t, 0.42, Overscan(0.42, -3), 1e-9)
}
