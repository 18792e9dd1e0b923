package surface

import "fmt"

// ElementDispatcher is the platform capability for the local surface: given
// a mapped screen point, resolve the DOM (or equivalent native widget)
// element under it and dispatch a synthetic pointer event to it. This is an
// external collaborator per spec §1 ("rendering... out of scope"); the core
// only needs the interface.
type ElementDispatcher interface {
	DispatchAt(eventType string, clientX, clientY float64, pointerID int, buttons int, pressure float64) error
}

// LocalSink is the "resolve the DOM element at the mapped point" surface
// from spec §4.5.
type LocalSink struct {
	dispatcher ElementDispatcher
}

// NewLocalSink wraps a platform ElementDispatcher as a Sink.
func NewLocalSink(dispatcher ElementDispatcher) *LocalSink {
	return &LocalSink{dispatcher: dispatcher}
}

func (s *LocalSink) Name() string { return "local" }

func (s *LocalSink) Dispatch(ev MappedEvent) error {
	if s.dispatcher == nil {
		return fmt.Errorf("no local element dispatcher configured")
	}
	return s.dispatcher.DispatchAt(string(ev.Type), ev.ClientX, ev.ClientY, ev.PointerID, ev.Buttons, ev.Pressure)
}
