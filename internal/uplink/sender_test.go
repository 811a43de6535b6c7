package uplink

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/fieldrover/scanlink/internal/scan"
)

func TestSender_SendDeliversExactBytes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewSender(client)

	var f scan.Frame
	for i := range f {
		f[i] = float32(i) * 10
	}
	frame := scan.EncodeFrame(f)

	got := make([]byte, len(frame))
	readErr := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(server, got)
		readErr <- err
	}()

	if err := s.Send(frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := <-readErr; err != nil {
		t.Fatalf("reading frame at peer: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Error("bytes at peer do not match the frame sent")
	}
	if got := s.FramesSent(); got != 1 {
		t.Errorf("FramesSent() = %d, want 1", got)
	}
	if got := s.BytesSent(); got != uint64(len(frame)) {
		t.Errorf("BytesSent() = %d, want %d", got, len(frame))
	}
}

func TestSender_CountersAccumulate(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go io.Copy(io.Discard, server)

	s := NewSender(client)
	frame := make([]byte, scan.FrameBytes)
	for i := 0; i < 3; i++ {
		if err := s.Send(frame); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}

	if got := s.FramesSent(); got != 3 {
		t.Errorf("FramesSent() = %d, want 3", got)
	}
	if got := s.BytesSent(); got != 3*scan.FrameBytes {
		t.Errorf("BytesSent() = %d, want %d", got, 3*scan.FrameBytes)
	}
}

func TestSender_SendReportsPeerClose(t *testing.T) {
	client, server := net.Pipe()
	server.Close()
	defer client.Close()

	s := NewSender(client)
	if err := s.Send(make([]byte, scan.FrameBytes)); err == nil {
		t.Fatal("Send() after peer close returned nil error")
	}
	if got := s.FramesSent(); got != 0 {
		t.Errorf("FramesSent() after failed send = %d, want 0", got)
	}
}

func TestDial_SendsOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	s, err := Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", ln.Addr(), err)
	}
	defer s.Close()

	peer := <-accepted
	defer peer.Close()

	var f scan.Frame
	f[0] = 1200.5
	f[359] = 42
	frame := scan.EncodeFrame(f)

	if err := s.Send(frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got := make([]byte, scan.FrameBytes)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(peer, got); err != nil {
		t.Fatalf("reading frame at peer: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Error("frame received at peer does not match frame sent")
	}
	if s.RemoteAddr() != ln.Addr().String() {
		t.Errorf("RemoteAddr() = %q, want %q", s.RemoteAddr(), ln.Addr().String())
	}
}

func TestDial_ClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(addr); err == nil {
		t.Fatal("Dial() to closed port returned nil error")
	}
}
