package scan

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func testFrame(fill float32) []byte {
	var f Frame
	for i := range f {
		f[i] = fill + float32(i)
	}
	return EncodeFrame(f)
}

// TestRecorder_ReplayRoundTrip records three frames and reads them back
// byte-identically.
func TestRecorder_ReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.rec")

	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	want := [][]byte{testFrame(1), testFrame(1000), testFrame(-40)}
	for i, frame := range want {
		if err := rec.Record(frame); err != nil {
			t.Fatalf("Record frame %d: %v", i, err)
		}
	}
	if got := rec.Frames(); got != 3 {
		t.Errorf("Frames = %d, want 3", got)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rep, err := OpenReplay(path)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	defer rep.Close()

	if got := rep.FrameCount(); got != 3 {
		t.Errorf("FrameCount = %d, want 3", got)
	}
	for i, w := range want {
		got, err := rep.Next()
		if err != nil {
			t.Fatalf("Next frame %d: %v", i, err)
		}
		if !bytes.Equal(got, w) {
			t.Errorf("frame %d differs from recording", i)
		}
	}
	if _, err := rep.Next(); err != io.EOF {
		t.Errorf("Next after last frame = %v, want io.EOF", err)
	}
}

// TestRecorder_RejectsWrongSize verifies only wire-sized frames can be
// recorded.
func TestRecorder_RejectsWrongSize(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "scan.rec"))
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer rec.Close()

	if err := rec.Record(make([]byte, 100)); err == nil {
		t.Error("Record accepted a 100-byte frame")
	}
	if got := rec.Frames(); got != 0 {
		t.Errorf("Frames = %d after rejected record, want 0", got)
	}
}

// TestReplayer_TruncatedRecording verifies a capture cut mid-frame surfaces
// as ErrUnexpectedEOF after the complete frames.
func TestReplayer_TruncatedRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.rec")
	data := append(testFrame(7), testFrame(8)[:100]...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rep, err := OpenReplay(path)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	defer rep.Close()

	if got := rep.FrameCount(); got != 1 {
		t.Errorf("FrameCount = %d, want 1 complete frame", got)
	}
	if _, err := rep.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := rep.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Next on truncated frame = %v, want io.ErrUnexpectedEOF", err)
	}
}

// TestReplayer_Rewind verifies replay can loop.
func TestReplayer_Rewind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.rec")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	first := testFrame(3)
	if err := rec.Record(first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	rec.Close()

	rep, err := OpenReplay(path)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	defer rep.Close()

	if _, err := rep.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := rep.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	got, err := rep.Next()
	if err != nil {
		t.Fatalf("Next after Rewind: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Error("frame after Rewind differs from first frame")
	}
}
