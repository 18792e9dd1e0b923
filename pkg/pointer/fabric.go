package pointer

import (
	"math"

	"golang.org/x/exp/slices"
)

// EventType names the three W3C-style pointer event kinds the fabric emits.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
)

// PointerEvent is one emission from the fabric, in normalized (pre-mapping)
// coordinates. Screen-space mapping (overscan + target dimensions) happens
// at the surface boundary, not here (spec §4.5, §9 "Overscan location").
type PointerEvent struct {
	HandID    int
	PointerID int
	Type      EventType
	X, Y      float64
	Buttons   int
	Pressure  float64
}

// pointerIDBase is the offset added to handId to produce a stable,
// non-overlapping pointer_id (spec §4.5).
const pointerIDBase = 10000

const defaultMoveEpsilon = 1e-4

type pointerSlot struct {
	pointerID     int
	lastX, lastY  float64
	lastPinching  bool
	lastCoasting  bool
	teleportArmed bool
}

// Fabric converts the router's per-hand cooked stream into a W3C-style
// pointer event stream (C5): stable pointer_id assignment, the ghost-draw
// teleport gate, and minimal-epsilon move coalescing.
type Fabric struct {
	teleportThreshold float64
	hoverEnabled      bool
	moveEpsilon       float64

	slots map[int]*pointerSlot
}

// NewFabric creates a Fabric using the teleport threshold and hover policy
// from t.
func NewFabric(t Tunables) *Fabric {
	return &Fabric{
		teleportThreshold: t.TeleportThresholdNormalized,
		hoverEnabled:      t.HoverEnabled,
		moveEpsilon:       defaultMoveEpsilon,
		slots:             make(map[int]*pointerSlot),
	}
}

// SetTunables hot-swaps the teleport threshold and hover policy.
func (fb *Fabric) SetTunables(t Tunables) {
	fb.teleportThreshold = t.TeleportThresholdNormalized
	fb.hoverEnabled = t.HoverEnabled
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (fb *Fabric) event(slot *pointerSlot, handID int, typ EventType, x, y float64, pinching bool) PointerEvent {
	buttons := 0
	pressure := 0.0
	if pinching {
		buttons = 1
		pressure = 0.5
	}
	return PointerEvent{
		HandID:    handID,
		PointerID: slot.pointerID,
		Type:      typ,
		X:         clampUnit(x),
		Y:         clampUnit(y),
		Buttons:   buttons,
		Pressure:  pressure,
	}
}

// Process emits the PointerEvent stream for one frame's cooked HandStates.
// Hands are scanned in ascending HandID order, matching the router's
// ordering guarantee.
func (fb *Fabric) Process(hands []HandState) []PointerEvent {
	ordered := make([]HandState, len(hands))
	copy(ordered, hands)
	slices.SortFunc(ordered, func(a, b HandState) int { return a.HandID - b.HandID })

	var events []PointerEvent

	for _, hs := range ordered {
		slot, ok := fb.slots[hs.HandID]
		if !ok {
			events = append(events, fb.onNewHand(hs)...)
			continue
		}

		if slot.teleportArmed {
			events = append(events, fb.event(slot, hs.HandID, EventPointerDown, hs.X, hs.Y, true))
			slot.teleportArmed = false
			slot.lastX, slot.lastY = hs.X, hs.Y
			slot.lastPinching = hs.IsPinching
			slot.lastCoasting = hs.IsCoasting
			continue
		}

		if slot.lastPinching && slot.lastCoasting && hs.IsPinching && !hs.IsCoasting {
			dist := math.Hypot(hs.X-slot.lastX, hs.Y-slot.lastY)
			if dist > fb.teleportThreshold {
				events = append(events, fb.event(slot, hs.HandID, EventPointerUp, slot.lastX, slot.lastY, false))
				slot.teleportArmed = true
				slot.lastPinching = false
				slot.lastCoasting = hs.IsCoasting
				continue
			}
		}

		switch {
		case !slot.lastPinching && hs.IsPinching:
			events = append(events, fb.event(slot, hs.HandID, EventPointerDown, hs.X, hs.Y, true))
		case slot.lastPinching && !hs.IsPinching:
			events = append(events, fb.event(slot, hs.HandID, EventPointerUp, hs.X, hs.Y, false))
		default:
			if math.Hypot(hs.X-slot.lastX, hs.Y-slot.lastY) > fb.moveEpsilon {
				events = append(events, fb.event(slot, hs.HandID, EventPointerMove, hs.X, hs.Y, hs.IsPinching))
			}
		}

		slot.lastX, slot.lastY = hs.X, hs.Y
		slot.lastPinching = hs.IsPinching
		slot.lastCoasting = hs.IsCoasting
	}

	return events
}

func (fb *Fabric) onNewHand(hs HandState) []PointerEvent {
	slot := &pointerSlot{pointerID: pointerIDBase + hs.HandID}

	if hs.IsPinching {
		fb.slots[hs.HandID] = slot
		slot.lastX, slot.lastY = hs.X, hs.Y
		slot.lastPinching = true
		slot.lastCoasting = hs.IsCoasting
		return []PointerEvent{fb.event(slot, hs.HandID, EventPointerDown, hs.X, hs.Y, true)}
	}

	if !fb.hoverEnabled {
		return nil
	}

	fb.slots[hs.HandID] = slot
	slot.lastX, slot.lastY = hs.X, hs.Y
	slot.lastCoasting = hs.IsCoasting
	return []PointerEvent{fb.event(slot, hs.HandID, EventPointerMove, hs.X, hs.Y, false)}
}

// Destroy tears down the pointer owned by handID, emitting a closing
// pointerup if it was down. Called by the caller when the router prunes a
// hand (spec §9, "cycles and back-references").
func (fb *Fabric) Destroy(handID int) []PointerEvent {
	slot, ok := fb.slots[handID]
	if !ok {
		return nil
	}
	delete(fb.slots, handID)

	if slot.lastPinching {
		return []PointerEvent{fb.event(slot, handID, EventPointerUp, slot.lastX, slot.lastY, false)}
	}
	return nil
}

// DestroyAll tears down every live pointer, emitting a closing pointerup for
// each one still down. Used on supervisor shutdown (spec §5 "Cancellation").
func (fb *Fabric) DestroyAll() []PointerEvent {
	ids := make([]int, 0, len(fb.slots))
	for id := range fb.slots {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var events []PointerEvent
	for _, id := range ids {
		events = append(events, fb.Destroy(id)...)
	}
	return events
}

// Overscan applies the fabric's display-side rescale to a single normalized
// coordinate component: x' = (x - offset) * scale where
// offset = (1 - 1/scale) / 2. Multiplying by the target surface's width or
// height is the caller's responsibility (spec §4.5, §9).
func Overscan(v float64, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	offset := (1 - 1/scale) / 2
	return (v - offset) * scale
}
