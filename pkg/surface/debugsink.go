package surface

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/google/uuid"
)

// DebugSink is an optional third fan-out target: an OSC-framed UDP
// telemetry stream of every mapped pointer dispatch, for an external
// debug/visualizer listener. It is adapted directly from the teacher's
// VMCSender (pkg/miface/sender.go): the same dial-once UDP connection, the
// same hand-rolled OSC message builder, the same idempotent Close. Where
// the teacher addressed VMC bone paths ("/VMC/Ext/Bone/Pos"), this sink
// addresses "/handpointer/..." paths carrying pointer dispatch fields
// instead of VTuber bone transforms.
type DebugSink struct {
	mu      sync.Mutex
	conn    *net.UDPConn
	enabled bool

	traceID uuid.UUID
}

// NewDebugSink dials a UDP connection to address:port for OSC-framed
// telemetry. Mirrors NewVMCSender's dial-and-wrap shape.
func NewDebugSink(address string, port int) (*DebugSink, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", address, port))
	if err != nil {
		return nil, fmt.Errorf("resolving debug sink address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to debug sink: %w", err)
	}

	return &DebugSink{conn: conn, enabled: true, traceID: uuid.New()}, nil
}

func (s *DebugSink) Name() string { return "debug" }

// Dispatch sends one OSC message describing the mapped pointer event.
func (s *DebugSink) Dispatch(ev MappedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.conn == nil {
		return nil
	}

	msg := buildOSCMessage("/handpointer/pointer",
		int32(ev.PointerID),
		string(ev.Type),
		float32(ev.ClientX),
		float32(ev.ClientY),
		int32(ev.Buttons),
		float32(ev.Pressure),
	)
	if _, err := s.conn.Write(msg); err != nil {
		return fmt.Errorf("sending pointer telemetry: %w", err)
	}
	return nil
}

// DispatchTransition sends one OSC message describing an FSM transition, for
// operators watching the debug stream during tuning.
func (s *DebugSink) DispatchTransition(handID int, previous, current string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.conn == nil {
		return nil
	}

	msg := buildOSCMessage("/handpointer/state", int32(handID), previous, current)
	if _, err := s.conn.Write(msg); err != nil {
		return fmt.Errorf("sending transition telemetry: %w", err)
	}
	return nil
}

// Close releases the debug sink's UDP connection. Safe to call more than
// once.
func (s *DebugSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// buildOSCMessage creates an OSC message with the given address and
// arguments, ported verbatim from the teacher's sender.go.
func buildOSCMessage(address string, args ...interface{}) []byte {
	buf := make([]byte, 0, 256)

	buf = appendOSCString(buf, address)

	typeTag := ","
	for _, arg := range args {
		switch arg.(type) {
		case int32:
			typeTag += "i"
		case float32:
			typeTag += "f"
		case string:
			typeTag += "s"
		}
	}
	buf = appendOSCString(buf, typeTag)

	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			buf = appendInt32(buf, v)
		case float32:
			buf = appendFloat32(buf, v)
		case string:
			buf = appendOSCString(buf, v)
		}
	}

	return buf
}

func appendOSCString(buf []byte, s string) []byte {
	buf = append(buf, []byte(s)...)
	buf = append(buf, 0)

	padding := (4 - (len(s)+1)%4) % 4
	for i := 0; i < padding; i++ {
		buf = append(buf, 0)
	}

	return buf
}

func appendInt32(buf []byte, v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return append(buf, b...)
}

func appendFloat32(buf []byte, v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return append(buf, b...)
}
