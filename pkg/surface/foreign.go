package surface

import "fmt"

// SyntheticPointerEventInit mirrors the wire-level event_init object from
// spec §6's cross-surface message contract.
type SyntheticPointerEventInit struct {
	PointerID   int     `json:"pointer_id"`
	PointerType string  `json:"pointer_type"`
	IsPrimary   bool    `json:"is_primary"`
	ClientX     float64 `json:"client_x"`
	ClientY     float64 `json:"client_y"`
	Buttons     int     `json:"buttons"`
	Pressure    float64 `json:"pressure"`
}

// SyntheticPointerEventMessage is the full wire message posted to a
// cross-origin embedded document, exactly as specified in spec §6.
type SyntheticPointerEventMessage struct {
	Type      string                    `json:"type"`
	EventType string                    `json:"event_type"`
	EventInit SyntheticPointerEventInit `json:"event_init"`
	Origin    string                    `json:"origin,omitempty"`
}

// MessagePoster is the platform capability for the foreign surface: post a
// message to an embedded cross-origin window. An agent inside that document
// (out of scope per spec §1) is responsible for consuming and locally
// re-dispatching it.
type MessagePoster interface {
	PostMessage(msg SyntheticPointerEventMessage) error
}

// ForeignSink builds the SYNTHETIC_POINTER_EVENT message contract and hands
// it to a MessagePoster.
type ForeignSink struct {
	poster     MessagePoster
	originHint string
}

// NewForeignSink wraps a MessagePoster as a Sink. originHint, if non-empty,
// is attached to every message as the optional origin field (spec §6 notes
// the fabric "MAY attach an origin hint"; allowlist enforcement itself is
// the recipient's responsibility).
func NewForeignSink(poster MessagePoster, originHint string) *ForeignSink {
	return &ForeignSink{poster: poster, originHint: originHint}
}

func (s *ForeignSink) Name() string { return "foreign" }

func (s *ForeignSink) Dispatch(ev MappedEvent) error {
	if s.poster == nil {
		return fmt.Errorf("no foreign message poster configured")
	}

	msg := SyntheticPointerEventMessage{
		Type:      "SYNTHETIC_POINTER_EVENT",
		EventType: string(ev.Type),
		EventInit: SyntheticPointerEventInit{
			PointerID:   ev.PointerID,
			PointerType: "touch",
			IsPrimary:   true,
			ClientX:     ev.ClientX,
			ClientY:     ev.ClientY,
			Buttons:     ev.Buttons,
			Pressure:    ev.Pressure,
		},
		Origin: s.originHint,
	}
	return s.poster.PostMessage(msg)
}
