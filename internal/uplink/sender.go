// Package uplink delivers packed revolution frames to the upstream
// collector over a single long-lived TCP connection.
package uplink

import (
	"fmt"
	"net"
	"sync"

	"github.com/fieldrover/scanlink/internal/monitoring"
)

// Sender writes frames to the upstream collector. Each frame goes out as a
// single blocking Write on the connection with no queueing and no retry. A
// failed write is returned to the caller and the Sender is not reusable
// afterwards.
type Sender struct {
	conn net.Conn
	addr string

	mu         sync.Mutex
	framesSent uint64
	bytesSent  uint64
}

// Dial connects to the upstream collector at addr and returns a Sender
// bound to that connection.
func Dial(addr string) (*Sender, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to upstream %s: %w", addr, err)
	}
	monitoring.Logf("[uplink] connected to %s", addr)
	return NewSender(conn), nil
}

// NewSender wraps an established connection. Most callers want Dial; this
// entry point exists for tools and tests that manage the connection
// themselves.
func NewSender(conn net.Conn) *Sender {
	return &Sender{conn: conn, addr: conn.RemoteAddr().String()}
}

// Send transmits one frame as a single blocking write, so the bytes are
// handed to the kernel in one call and the frame is never interleaved with
// another from this process.
func (s *Sender) Send(frame []byte) error {
	n, err := s.conn.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write frame to %s: %w", s.addr, err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write to %s: wrote %d of %d bytes", s.addr, n, len(frame))
	}

	s.mu.Lock()
	s.framesSent++
	s.bytesSent += uint64(n)
	s.mu.Unlock()
	return nil
}

// FramesSent reports how many frames have been written successfully.
func (s *Sender) FramesSent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framesSent
}

// BytesSent reports the total payload bytes written successfully.
func (s *Sender) BytesSent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesSent
}

// RemoteAddr returns the address of the upstream collector.
func (s *Sender) RemoteAddr() string {
	return s.addr
}

// Close tears down the connection. Offline tools use this; the capture
// daemon keeps the connection open for the lifetime of the process and
// leaves teardown to process exit.
func (s *Sender) Close() error {
	return s.conn.Close()
}
