package surface

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewDebugSinkRejectsMalformedAddress(t *testing.T) {
	// An unmatched bracket fails host:port parsing before any DNS lookup,
	// keeping this test independent of network access.
	_, err := NewDebugSink("[::1", 9999)
	require.Error(t, err)
}

func TestDebugSinkSendsOSCFramedPointerMessage(t *testing.T) {
	listener := listenUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	sink, err := NewDebugSink("127.0.0.1", port)
	require.NoError(t, err)
	defer sink.Close()

	err = sink.Dispatch(MappedEvent{ClientX: 1, ClientY: 2})
	require.NoError(t, err)

	buf := make([]byte, 512)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := listener.Read(buf)
	require.NoError(t, err)

	require.Contains(t, string(buf[:n]), "/handpointer/pointer")
}

func TestDebugSinkSendsTransitionMessage(t *testing.T) {
	listener := listenUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	sink, err := NewDebugSink("127.0.0.1", port)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.DispatchTransition(1, "IDLE", "READY"))

	buf := make([]byte, 512)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := listener.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "/handpointer/state")
}

func TestDebugSinkDispatchAfterCloseIsNoop(t *testing.T) {
	listener := listenUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	sink, err := NewDebugSink("127.0.0.1", port)
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "Close must be safe to call twice")

	require.NoError(t, sink.Dispatch(MappedEvent{}), "dispatch after close must be a no-op, not an error")
}

func TestBuildOSCMessageAlignsTo4ByteBoundary(t *testing.T) {
	msg := buildOSCMessage("/h", int32(1))
	require.Equal(t, 0, len(msg)%4, "OSC-framed messages must be 4-byte aligned")
}
