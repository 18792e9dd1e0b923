// Package supervisor wires the router, optional Highlander mutex, and
// pointer fabric into the single frame-processing entry point described in
// spec.md §2 and §5, and publishes the resulting STATE_CHANGE,
// POINTER_UPDATE and POINTER_COAST events on a bus.Bus. Its lifecycle
// (Idle/Running/Stopped/Closed, idempotent Start/Stop/Close, teardown
// aggregation) is carried over from the teacher's Tracker, minus the
// teacher's own ticker-driven loop: spec §5 requires the core never suspend
// within a frame and be driven by the caller's incoming frame events, so
// ProcessFrame is called directly rather than on an internal timer.
package supervisor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/handpointer/core/pkg/bus"
	"github.com/handpointer/core/pkg/pointer"
	"github.com/handpointer/core/pkg/surface"
)

// State mirrors the teacher's TrackerState.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Common errors, named in the teacher's style (sentinel errors.New values).
var (
	ErrClosed     = errors.New("supervisor is closed")
	ErrRunning    = errors.New("supervisor is already running")
	ErrNotRunning = errors.New("supervisor is not running")
)

// Supervisor is a single instance's pipeline: one Router, one optional
// Highlander, one Fabric, one Bus, and zero or more surface sinks. Each
// instance owns its state independently (spec §9 "Global state: none"),
// which keeps test parallelism safe.
type Supervisor struct {
	mu    sync.RWMutex
	state State

	router        *pointer.Router
	highlander    *pointer.Highlander
	fabric        *pointer.Fabric
	bus           *bus.Bus
	surfaceFabric *surface.Fabric
	log           zerolog.Logger
}

// Config bundles the construction-time choices.
type Config struct {
	Tunables         pointer.Tunables
	HighlanderConfig *pointer.HighlanderConfig // nil disables Highlander
	GraceMs          float64
	Logger           zerolog.Logger
	SurfaceFabric    *surface.Fabric // nil means no surface dispatch, bus events only
}

// New creates a Supervisor in StateIdle.
func New(cfg Config) *Supervisor {
	s := &Supervisor{
		state:         StateIdle,
		router:        pointer.NewRouter(cfg.Tunables, pointer.WithLogger(cfg.Logger), pointer.WithGraceMs(cfg.GraceMs)),
		fabric:        pointer.NewFabric(cfg.Tunables),
		bus:           bus.New(bus.WithLogger(cfg.Logger)),
		surfaceFabric: cfg.SurfaceFabric,
		log:           cfg.Logger,
	}
	if cfg.HighlanderConfig != nil {
		s.highlander = pointer.NewHighlander(*cfg.HighlanderConfig)
	}
	return s
}

// Bus returns the event bus callers subscribe to.
func (s *Supervisor) Bus() *bus.Bus { return s.bus }

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetTunables hot-swaps tunables across the router and fabric.
func (s *Supervisor) SetTunables(t pointer.Tunables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.SetTunables(t)
	s.fabric.SetTunables(t)
}

// Start transitions Idle/Stopped -> Running.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return ErrRunning
	case StateClosed:
		return ErrClosed
	}
	s.state = StateRunning
	return nil
}

// Stop transitions Running -> Stopped. Any pointer still down is closed out
// with a synthetic pointerup before the transition completes (spec §5
// "Cancellation").
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}
	s.teardownPointers()
	s.state = StateStopped
	return nil
}

// Close stops (if running), closes the bus, and returns the joined surface
// dispatch errors from the pointer teardown. It does not close the surface
// sinks themselves.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrClosed
	}
	var err error
	if s.state == StateRunning {
		err = s.teardownPointers()
	}
	s.state = StateClosed
	s.bus.Close()
	return err
}

func (s *Supervisor) teardownPointers() error {
	var errs []error
	for _, ev := range s.fabric.DestroyAll() {
		if err := s.dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProcessFrame is the single frame-processing entry point (spec §2, §5): it
// must be called from one goroutine at a time, in frame arrival order, and
// performs no I/O or blocking internally (surface dispatch is delegated to
// synchronous, caller-supplied Sinks which are expected to honor the same
// contract).
func (s *Supervisor) ProcessFrame(frame pointer.FrameEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}

	states, transitions, pruned := s.router.OnFrame(frame)

	for _, t := range transitions {
		_ = s.bus.Publish(bus.ChannelStateChange, bus.StateChangeEvent{
			HandID:   t.HandID,
			Previous: t.Previous.String(),
			Current:  t.Current.String(),
		})
	}

	emitted := states
	if s.highlander != nil {
		emitted = s.highlander.Filter(states)
	}

	var errs []error

	for _, hs := range emitted {
		_ = s.bus.Publish(bus.ChannelPointerUpdate, bus.PointerUpdateEvent{
			HandID:       hs.HandID,
			X:            hs.X,
			Y:            hs.Y,
			IsPinching:   hs.IsPinching,
			Gesture:      string(hs.Gesture),
			Confidence:   hs.Confidence,
			RawLandmarks: hs.Landmarks,
		})
	}

	for _, ev := range s.fabric.Process(emitted) {
		if err := s.dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}

	for _, id := range pruned {
		wasPinching := false
		for _, ev := range s.fabric.Destroy(id) {
			wasPinching = ev.Type == pointer.EventPointerUp
			if err := s.dispatch(ev); err != nil {
				errs = append(errs, err)
			}
		}
		_ = s.bus.Publish(bus.ChannelPointerCoast, bus.PointerCoastEvent{
			HandID:     id,
			IsPinching: wasPinching,
			Destroy:    true,
		})
	}

	if len(errs) > 0 {
		return fmt.Errorf("surface dispatch errors: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Supervisor) dispatch(ev pointer.PointerEvent) error {
	if s.surfaceFabric == nil {
		return nil
	}
	return s.surfaceFabric.Dispatch(ev)
}
