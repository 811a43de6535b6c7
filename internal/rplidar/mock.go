package rplidar

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// TestablePort implements Porter with configurable behaviour for tests:
// scripted reads, captured writes, error injection, and DTR bookkeeping.
type TestablePort struct {
	mu sync.Mutex

	// ReadBuffer holds bytes returned by Read calls.
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures bytes written to the port.
	WriteBuffer *bytes.Buffer

	// ReadError is returned by every Read call once set.
	ReadError error

	// WriteError is returned by every Write call once set.
	WriteError error

	// CloseError is returned by Close if set.
	CloseError error

	// Closed indicates whether Close was called.
	Closed bool

	// DTR is the current data-terminal-ready state.
	DTR bool

	// DTRCalls records each SetDTR value in order.
	DTRCalls []bool

	// ReadTimeout is the last timeout passed to SetReadTimeout. Reads on an
	// empty buffer sleep for it before returning (0, nil), imitating the poll
	// behaviour of a real port.
	ReadTimeout time.Duration

	// ResetCalls counts ResetInputBuffer invocations.
	ResetCalls int
}

// NewTestablePort returns an empty scripted port.
func NewTestablePort() *TestablePort {
	return &TestablePort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read returns scripted bytes, or (0, nil) after the poll timeout when the
// script is exhausted.
func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	if t.ReadError != nil {
		err := t.ReadError
		t.mu.Unlock()
		return 0, err
	}
	if t.Closed {
		t.mu.Unlock()
		return 0, errors.New("port closed")
	}
	if t.ReadBuffer.Len() == 0 {
		timeout := t.ReadTimeout
		t.mu.Unlock()
		if timeout > 0 {
			time.Sleep(timeout)
		} else {
			time.Sleep(time.Millisecond)
		}
		return 0, nil
	}
	defer t.mu.Unlock()
	return t.ReadBuffer.Read(p)
}

// Write captures p.
func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.WriteError != nil {
		return 0, t.WriteError
	}
	if t.Closed {
		return 0, errors.New("port closed")
	}
	return t.WriteBuffer.Write(p)
}

// Close marks the port closed.
func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return t.CloseError
}

// SetDTR records the requested line state.
func (t *TestablePort) SetDTR(dtr bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.DTR = dtr
	t.DTRCalls = append(t.DTRCalls, dtr)
	return nil
}

// SetReadTimeout stores the poll interval used for empty reads.
func (t *TestablePort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadTimeout = timeout
	return nil
}

// ResetInputBuffer drops any unread scripted bytes.
func (t *TestablePort) ResetInputBuffer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ResetCalls++
	t.ReadBuffer.Reset()
	return nil
}

// Queue appends bytes for future Read calls.
func (t *TestablePort) Queue(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadBuffer.Write(b)
}

// Written returns a copy of everything written so far.
func (t *TestablePort) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, t.WriteBuffer.Len())
	copy(out, t.WriteBuffer.Bytes())
	return out
}
