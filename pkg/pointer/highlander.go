package pointer

import "golang.org/x/exp/slices"

// HighlanderConfig holds the two orthogonal policy flags from spec §4.4.
type HighlanderConfig struct {
	// LockOnCommitOnly refuses to acquire the lock until some hand commits.
	LockOnCommitOnly bool
	// DropHoverEvents suppresses the locked hand's output while it is not
	// pinching, without releasing the lock.
	DropHoverEvents bool
}

// Highlander is the optional single-active-pointer policy wrapper (C4). Its
// name and "there can be only one" semantics are borrowed as-is from the
// domain's own vocabulary; the bookkeeping style (a locked id plus a
// present/absent check per call) follows gioui.org/gesture.Click's small
// pressed/entered state machine.
type Highlander struct {
	cfg HighlanderConfig

	locked   bool
	lockedID int
}

// NewHighlander creates a Highlander with the given policy flags.
func NewHighlander(cfg HighlanderConfig) *Highlander {
	return &Highlander{cfg: cfg}
}

// SetConfig hot-swaps the policy flags.
func (h *Highlander) SetConfig(cfg HighlanderConfig) { h.cfg = cfg }

// Filter reduces a multi-hand HandState slice to at most one element, per
// spec §4.4's algorithm. hands need not be pre-sorted; Filter sorts a local
// copy by ascending HandID before scanning for a new lock, matching the
// ordering requirement in spec §5.
func (h *Highlander) Filter(hands []HandState) []HandState {
	if len(hands) == 0 {
		h.locked = false
		return nil
	}

	if h.locked {
		for _, hs := range hands {
			if hs.HandID == h.lockedID {
				return h.emit(hs)
			}
		}
		h.locked = false
	}

	ordered := make([]HandState, len(hands))
	copy(ordered, hands)
	slices.SortFunc(ordered, func(a, b HandState) int { return a.HandID - b.HandID })

	for _, hs := range ordered {
		if h.cfg.LockOnCommitOnly && !hs.IsPinching {
			continue
		}
		h.locked = true
		h.lockedID = hs.HandID
		return h.emit(hs)
	}

	return nil
}

func (h *Highlander) emit(hs HandState) []HandState {
	if h.cfg.DropHoverEvents && !hs.IsPinching {
		return nil
	}
	return []HandState{hs}
}

// Locked reports whether a hand currently holds the lock, and which.
func (h *Highlander) Locked() (int, bool) {
	return h.lockedID, h.locked
}
