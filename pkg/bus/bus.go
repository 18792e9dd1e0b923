// Package bus realizes the typed, named-channel event boundary described in
// spec.md §6 and §9 ("Typed events"): a small set of fixed channel names
// with fixed payload shapes. Publishing to a channel outside that fixed set
// is a programming error; subscribing to a channel nobody ever publishes on
// is a harmless no-op. The fan-out/buffered/drop-when-slow delivery style is
// carried over from the teacher's Tracker.Subscribe/broadcast pattern.
package bus

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/handpointer/core/pkg/pointer"
)

// Channel names the fixed bus channels, matching spec.md §6.
type Channel string

const (
	ChannelFrameProcessed Channel = "FRAME_PROCESSED"
	ChannelStateChange    Channel = "STATE_CHANGE"
	ChannelPointerUpdate  Channel = "POINTER_UPDATE"
	ChannelPointerCoast   Channel = "POINTER_COAST"
)

var knownChannels = map[Channel]bool{
	ChannelFrameProcessed: true,
	ChannelStateChange:    true,
	ChannelPointerUpdate:  true,
	ChannelPointerCoast:   true,
}

// StateChangeEvent is the STATE_CHANGE payload.
type StateChangeEvent struct {
	HandID   int
	Previous string
	Current  string
}

// PointerUpdateEvent is the POINTER_UPDATE payload.
type PointerUpdateEvent struct {
	HandID       int
	X, Y         float64
	IsPinching   bool
	Gesture      string
	Confidence   float64
	RawLandmarks []pointer.Landmark
}

// PointerCoastEvent is the POINTER_COAST payload, published when the router
// prunes a hand.
type PointerCoastEvent struct {
	HandID     int
	IsPinching bool
	Destroy    bool
}

// FrameProcessedEvent is the FRAME_PROCESSED payload, published by the
// upstream vision plugin (outside this module's boundary; defined here so
// in-process callers share one payload shape).
type FrameProcessedEvent struct {
	Frame pointer.FrameEvent
}

const subscriberBuffer = 16

// Bus is a minimal in-process typed pub/sub realization of the external bus
// interface described in spec §6. It is not the production event bus (that
// is an external collaborator per spec §1); it exists so this module's
// components have a concrete channel to publish on and tests have something
// to assert against.
type Bus struct {
	mu        sync.RWMutex
	subs      map[Channel][]chan any
	sessionID uuid.UUID
	log       zerolog.Logger
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger attaches a zerolog.Logger for publish diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// New creates a Bus with a fresh session id for debug correlation.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:      make(map[Channel][]chan any),
		sessionID: uuid.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SessionID returns the process-lifetime correlation id attached to this
// bus's diagnostics.
func (b *Bus) SessionID() uuid.UUID { return b.sessionID }

// Subscribe returns a buffered channel receiving every payload published on
// ch. Subscribing to a channel with no publishers is a harmless no-op: the
// returned channel simply never receives.
func (b *Bus) Subscribe(ch Channel) <-chan any {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := make(chan any, subscriberBuffer)
	b.subs[ch] = append(b.subs[ch], c)
	return c
}

// Publish fans payload out to every subscriber of ch, dropping it for any
// subscriber whose buffer is full (matching the teacher's
// "drop frame if subscriber is slow" policy). Publishing to a channel
// outside the fixed set named in spec §6 is a programming error and returns
// an error rather than panicking, keeping the bus itself failure-contained.
func (b *Bus) Publish(ch Channel, payload any) error {
	if !knownChannels[ch] {
		return fmt.Errorf("bus: publish to unknown channel %q", ch)
	}

	b.mu.RLock()
	subs := b.subs[ch]
	b.mu.RUnlock()

	for _, c := range subs {
		select {
		case c <- payload:
		default:
			b.log.Warn().Str("session_id", b.sessionID.String()).Str("channel", string(ch)).Msg("subscriber buffer full, dropping event")
		}
	}
	return nil
}

// Close closes every subscriber channel across all channels. Safe to call
// once at supervisor shutdown.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, subs := range b.subs {
		for _, c := range subs {
			close(c)
		}
	}
	b.subs = make(map[Channel][]chan any)
}
