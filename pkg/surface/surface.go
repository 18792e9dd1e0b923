// Package surface implements the fan-out boundary described in spec.md
// §4.5: the platform abstraction that turns a pkg/pointer.PointerEvent into
// a dispatch at a concrete sink (a local DOM element, a foreign cross-origin
// document, or — adapted from the teacher's VMC/OSC sender — a debug
// telemetry listener). Sink failures are isolated per the teacher's
// Tracker.Close error-aggregation idiom: one sink's error never blocks
// another's dispatch.
package surface

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handpointer/core/pkg/pointer"
)

// ScreenSize is the platform capability the fabric boundary uses to map
// normalized coordinates onto concrete pixels (spec §4.5 "Coordinate
// mapping"). A real embedding supplies the live window/viewport size; tests
// and cmd/handpointerd's headless mode use a FixedScreenSize.
type ScreenSize interface {
	Size() (width, height float64)
}

// FixedScreenSize is a ScreenSize that never changes.
type FixedScreenSize struct{ Width, Height float64 }

func (f FixedScreenSize) Size() (float64, float64) { return f.Width, f.Height }

// Sink is one fan-out target for a mapped pointer dispatch. Implementations
// must not block and must not panic; a failing Dispatch is logged by Fabric
// and does not interrupt delivery to other sinks (spec §4.5, §7.3).
type Sink interface {
	Name() string
	Dispatch(MappedEvent) error
}

// MappedEvent is a PointerEvent after the overscan transform and the
// ScreenSize multiplication have been applied — what actually crosses the
// sink boundary.
type MappedEvent struct {
	pointer.PointerEvent
	ClientX, ClientY float64
}

// Fabric maps a stream of pointer.PointerEvent to one or more Sinks. It owns
// no per-hand state (that lives in pkg/pointer.Fabric); it is purely the
// overscan-and-fanout boundary.
type Fabric struct {
	screen ScreenSize
	scale  float64
	sinks  []Sink
	log    zerolog.Logger
}

// Option configures a Fabric at construction time.
type Option func(*Fabric)

// WithLogger attaches a zerolog.Logger for dispatch-failure diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Fabric) { f.log = log }
}

// NewFabric creates a surface Fabric targeting the given screen and
// overscan scale, fanning out to sinks.
func NewFabric(screen ScreenSize, overscanScale float64, sinks []Sink, opts ...Option) *Fabric {
	f := &Fabric{screen: screen, scale: overscanScale, sinks: sinks}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetOverscanScale hot-swaps the overscan scale.
func (f *Fabric) SetOverscanScale(scale float64) { f.scale = scale }

// Map applies the overscan transform and the current screen dimensions to
// one normalized PointerEvent.
func (f *Fabric) Map(ev pointer.PointerEvent) MappedEvent {
	w, h := f.screen.Size()
	x := pointer.Overscan(ev.X, f.scale) * w
	y := pointer.Overscan(ev.Y, f.scale) * h
	return MappedEvent{PointerEvent: ev, ClientX: x, ClientY: y}
}

// Dispatch maps and fans out one PointerEvent to every configured sink.
// Sink failures are collected and returned together but never prevent
// delivery to the remaining sinks (spec §7.3).
func (f *Fabric) Dispatch(ev pointer.PointerEvent) error {
	mapped := f.Map(ev)

	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Dispatch(mapped); err != nil {
			f.log.Warn().Str("sink", sink.Name()).Err(err).Msg("surface dispatch failed")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DispatchAll maps and fans out every event in evs, joining any sink errors.
func (f *Fabric) DispatchAll(evs []pointer.PointerEvent) error {
	var errs []error
	for _, ev := range evs {
		if err := f.Dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
