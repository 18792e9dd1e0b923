package pointer

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// defaultGraceMs is the minimum grace window added to coast_timeout_ms
// before a hand absent from every frame is pruned (spec §3 "Lifecycles").
const defaultGraceMs = 500

// handEntry is the router's bookkeeping for one live handId: its FSM, its
// smoother, and the absence timer used by the prune pass. Grounded on the
// teacher's Tracker, which keyed a single camera/processor/sender set under
// one mutex; here the map scales that same ownership pattern to N hands.
type handEntry struct {
	fsm      *GestureFSM
	smoother *Smoother

	absentMs float64
	seen     bool
}

// Router owns one GestureFSM and one Smoother per live handId (C3). It
// prunes hands that have been absent longer than coast_timeout_ms plus a
// grace period, and reports STATE_CHANGE transitions alongside the cooked
// HandState stream.
type Router struct {
	mu       sync.RWMutex
	tunables Tunables
	graceMs  float64
	hands    map[int]*handEntry
	log      zerolog.Logger

	lastFrameMs   float64
	haveLastFrame bool
}

// RouterOption configures a Router at construction time, mirroring the
// teacher's functional-option-free but flag-style setters
// (SetCameraSource/SetProcessor); Router instead takes the logger up front
// since it has no post-construction wiring phase.
type RouterOption func(*Router)

// WithLogger attaches a zerolog.Logger used for transition and prune
// diagnostics. The zero value logger is a safe no-op, so this option may be
// omitted.
func WithLogger(log zerolog.Logger) RouterOption {
	return func(r *Router) { r.log = log }
}

// WithGraceMs overrides the prune grace window (default 500ms, per spec §3).
func WithGraceMs(graceMs float64) RouterOption {
	return func(r *Router) { r.graceMs = graceMs }
}

// NewRouter creates a Router with the given starting tunables.
func NewRouter(t Tunables, opts ...RouterOption) *Router {
	r := &Router{
		tunables: t,
		graceMs:  defaultGraceMs,
		hands:    make(map[int]*handEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetTunables hot-swaps the tunables applied to every live and future FSM.
func (r *Router) SetTunables(t Tunables) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tunables = t
	for _, e := range r.hands {
		e.fsm.SetTunables(t)
	}
}

// OnFrame processes one FrameEvent: it advances the FSM and smoother for
// every observed hand (creating fresh state for new handIds), then prunes
// any tracked hand absent from this frame for longer than the grace window.
// Hands are processed in ascending handId order, per spec §5 "Ordering".
func (r *Router) OnFrame(frame FrameEvent) (states []HandState, transitions []Transition, prunedHandIDs []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dtMs float64
	if r.haveLastFrame {
		dtMs = frame.CaptureTimeMs - r.lastFrameMs
		if dtMs < 0 {
			dtMs = 0
		}
	}
	r.lastFrameMs = frame.CaptureTimeMs
	r.haveLastFrame = true

	ordered := make([]RawHand, len(frame.Hands))
	copy(ordered, frame.Hands)
	slices.SortFunc(ordered, func(a, b RawHand) int { return a.HandID - b.HandID })

	observed := make(map[int]bool, len(ordered))
	states = make([]HandState, 0, len(ordered))

	for _, rh := range ordered {
		observed[rh.HandID] = true
		entry, ok := r.hands[rh.HandID]
		if !ok {
			entry = &handEntry{
				fsm:      NewGestureFSM(r.tunables),
				smoother: NewSmoother(r.tunables.KalmanQ, r.tunables.KalmanR),
			}
			r.hands[rh.HandID] = entry
			r.log.Debug().Int("hand_id", rh.HandID).Msg("hand entered")
		}
		entry.seen = true
		entry.absentMs = 0

		trans, changed := entry.fsm.Advance(rh.Gesture, rh.Confidence, rh.FrameTimeMs)
		if changed {
			trans.HandID = rh.HandID
			transitions = append(transitions, trans)
			r.log.Debug().Int("hand_id", rh.HandID).
				Str("from", trans.Previous.String()).
				Str("to", trans.Current.String()).
				Msg("gesture state transition")
		}

		x, y := entry.smoother.Filter(rh.FingertipX, rh.FingertipY)

		states = append(states, HandState{
			HandID:     rh.HandID,
			X:          x,
			Y:          y,
			IsPinching: entry.fsm.IsPinching(),
			IsCoasting: entry.fsm.IsCoasting(),
			Gesture:    rh.Gesture,
			Confidence: clampConfidence(rh.Confidence),
			Landmarks:  rh.Landmarks,
		})
	}

	pruneThreshold := r.tunables.CoastTimeoutMs + r.graceMs
	for id, e := range r.hands {
		if observed[id] {
			continue
		}
		e.absentMs += dtMs
		if e.absentMs > pruneThreshold {
			prunedHandIDs = append(prunedHandIDs, id)
		}
	}
	slices.Sort(prunedHandIDs)
	for _, id := range prunedHandIDs {
		delete(r.hands, id)
		r.log.Debug().Int("hand_id", id).Msg("hand pruned")
	}

	return states, transitions, prunedHandIDs
}

// absenceMs is a package-test convenience: it returns the absence timer for
// a given handId (0 if the hand is live or unknown).
func (r *Router) absenceMs(handID int) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.hands[handID]; ok {
		return e.absentMs
	}
	return 0
}

// LiveHandIDs returns the ascending-sorted handIds currently tracked.
func (r *Router) LiveHandIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := maps.Keys(r.hands)
	slices.Sort(ids)
	return ids
}
