package scan

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Frame is the serialized snapshot of all 360 buckets sent once per
// revolution.
type Frame [Buckets]float32

// FrameBytes is the exact on-wire size of an encoded frame: 360 consecutive
// little-endian float32 values, no header, no delimiter, no length prefix.
// The ground station knows the frame size out of band.
const FrameBytes = Buckets * 4

// EncodeFrame packs f into a freshly allocated wire buffer.
func EncodeFrame(f Frame) []byte {
	buf := make([]byte, FrameBytes)
	if err := PutFrame(buf, f); err != nil {
		panic(err)
	}
	return buf
}

// PutFrame packs f into dst, which must be exactly FrameBytes long. The
// capture loop reuses one buffer for the lifetime of the session.
func PutFrame(dst []byte, f Frame) error {
	if len(dst) != FrameBytes {
		return fmt.Errorf("frame buffer must be %d bytes, got %d", FrameBytes, len(dst))
	}
	for i, v := range f {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return nil
}

// DecodeFrame parses a wire buffer produced by EncodeFrame or PutFrame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if len(data) != FrameBytes {
		return f, fmt.Errorf("frame must be %d bytes, got %d", FrameBytes, len(data))
	}
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return f, nil
}
