package scan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestEncodeFrame_FixedLength verifies every frame is exactly 1,440 bytes no
// matter how sparse the buffer is.
func TestEncodeFrame_FixedLength(t *testing.T) {
	var b AngleBuffer
	if got := len(EncodeFrame(b.Snapshot())); got != FrameBytes {
		t.Fatalf("empty frame length = %d, want %d", got, FrameBytes)
	}

	samples := make([]Sample, 0, 720)
	for i := 0; i < 720; i++ {
		samples = append(samples, Sample{Angle: float64(i) / 2, Distance: float64(i)})
	}
	b.Apply(Revolution{Samples: samples})
	if got := len(EncodeFrame(b.Snapshot())); got != FrameBytes {
		t.Fatalf("dense frame length = %d, want %d", got, FrameBytes)
	}
}

// TestEncodeFrame_LittleEndianLayout pins the byte layout: bucket i occupies
// bytes [4i, 4i+4) as a little-endian float32.
func TestEncodeFrame_LittleEndianLayout(t *testing.T) {
	var f Frame
	f[0] = 1.0
	f[359] = 2.0
	buf := EncodeFrame(f)

	// 1.0 = 0x3F800000, 2.0 = 0x40000000.
	if buf[0] != 0x00 || buf[1] != 0x00 || buf[2] != 0x80 || buf[3] != 0x3F {
		t.Errorf("bucket 0 bytes = % X, want 00 00 80 3F", buf[0:4])
	}
	if buf[1436] != 0x00 || buf[1437] != 0x00 || buf[1438] != 0x00 || buf[1439] != 0x40 {
		t.Errorf("bucket 359 bytes = % X, want 00 00 00 40", buf[1436:1440])
	}
	for i := 4; i < 1436; i++ {
		if buf[i] != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, buf[i])
		}
	}
}

// TestFrame_RoundTrip verifies decode(encode(f)) == f.
func TestFrame_RoundTrip(t *testing.T) {
	var f Frame
	for i := range f {
		f[i] = float32(i)*3.25 + 0.125
	}
	got, err := DecodeFrame(EncodeFrame(f))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("frame round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestPutFrame_RejectsWrongSize verifies the reused wire buffer must be
// exactly frame sized.
func TestPutFrame_RejectsWrongSize(t *testing.T) {
	var f Frame
	if err := PutFrame(make([]byte, FrameBytes-1), f); err == nil {
		t.Error("PutFrame accepted a short buffer")
	}
	if err := PutFrame(make([]byte, FrameBytes+1), f); err == nil {
		t.Error("PutFrame accepted a long buffer")
	}
}

// TestDecodeFrame_RejectsWrongSize verifies truncated or padded wire data is
// refused.
func TestDecodeFrame_RejectsWrongSize(t *testing.T) {
	if _, err := DecodeFrame(make([]byte, FrameBytes-4)); err == nil {
		t.Error("DecodeFrame accepted short data")
	}
	if _, err := DecodeFrame(make([]byte, FrameBytes*2)); err == nil {
		t.Error("DecodeFrame accepted long data")
	}
}
