package pointer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func hs(id int, pinching bool) HandState {
	return HandState{HandID: id, IsPinching: pinching}
}

func TestHighlanderFirstComeFirstServed(t *testing.T) {
	h := NewHighlander(HighlanderConfig{})

	out := h.Filter([]HandState{hs(3, false), hs(1, false)})
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].HandID, "ascending order: lowest handId acquires the lock first")

	id, locked := h.Locked()
	require.True(t, locked)
	require.Equal(t, 1, id)
}

func TestHighlanderRetainsLockAcrossFrames(t *testing.T) {
	h := NewHighlander(HighlanderConfig{})

	h.Filter([]HandState{hs(1, false)})
	out := h.Filter([]HandState{hs(2, true), hs(1, false)})
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].HandID, "a new hand must not steal the lock while the locked hand is still present")
}

func TestHighlanderReleasesWhenLockedHandAbsent(t *testing.T) {
	h := NewHighlander(HighlanderConfig{})

	h.Filter([]HandState{hs(1, false)})
	out := h.Filter([]HandState{hs(2, true)})
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].HandID, "lock must release and transfer once the holder disappears")
}

func TestHighlanderReleasesOnEmptyFrame(t *testing.T) {
	h := NewHighlander(HighlanderConfig{})
	h.Filter([]HandState{hs(1, false)})

	out := h.Filter(nil)
	require.Empty(t, out)
	_, locked := h.Locked()
	require.False(t, locked)
}

func TestHighlanderLockOnCommitOnlySkipsHoveringHands(t *testing.T) {
	h := NewHighlander(HighlanderConfig{LockOnCommitOnly: true})

	out := h.Filter([]HandState{hs(1, false), hs(2, false)})
	require.Empty(t, out, "no hand is pinching yet, lock_on_commit_only must refuse to acquire")

	out = h.Filter([]HandState{hs(1, false), hs(2, true)})
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].HandID, "the first pinching hand acquires the lock")
}

func TestHighlanderDropHoverEventsSuppressesOutputButKeepsLock(t *testing.T) {
	h := NewHighlander(HighlanderConfig{DropHoverEvents: true})

	out := h.Filter([]HandState{hs(1, false)})
	require.Empty(t, out, "hover output is suppressed")

	_, locked := h.Locked()
	require.True(t, locked, "the lock is still held even though output is suppressed")

	out = h.Filter([]HandState{hs(1, true)})
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].HandID)
}
