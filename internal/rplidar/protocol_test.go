package rplidar

import (
	"bytes"
	"errors"
	"testing"
)

// measurementBytes builds a 5-byte scan cabin, the inverse of
// parseMeasurement. Angles that are multiples of 1/64 degree and distances
// that are multiples of 1/4 mm round-trip exactly.
func measurementBytes(newScan bool, quality int, angle, dist float64) []byte {
	b := make([]byte, measurementLen)
	b[0] = byte(quality) << 2
	if newScan {
		b[0] |= 0x01
	} else {
		b[0] |= 0x02
	}
	rawAngle := uint16(angle * 64)
	b[1] = byte(rawAngle&0x7F)<<1 | 0x01
	b[2] = byte(rawAngle >> 7)
	rawDist := uint16(dist * 4)
	b[3] = byte(rawDist)
	b[4] = byte(rawDist >> 8)
	return b
}

func TestEncodeCommand(t *testing.T) {
	got := encodeCommand(cmdScan)
	want := []byte{0xA5, 0x20}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeCommand(SCAN) = % X, want % X", got, want)
	}
}

// TestEncodeSetPWM pins the payload command framing including the XOR
// checksum over sync, command, length, and payload bytes.
func TestEncodeSetPWM(t *testing.T) {
	cases := []struct {
		duty uint16
		want []byte
	}{
		{1023, []byte{0xA5, 0xF0, 0x02, 0xFF, 0x03, 0xAB}},
		{660, []byte{0xA5, 0xF0, 0x02, 0x94, 0x02, 0xC1}},
		{0, []byte{0xA5, 0xF0, 0x02, 0x00, 0x00, 0x57}},
	}
	for _, c := range cases {
		if got := encodeSetPWM(c.duty); !bytes.Equal(got, c.want) {
			t.Errorf("encodeSetPWM(%d) = % X, want % X", c.duty, got, c.want)
		}
	}
}

func TestParseDescriptor(t *testing.T) {
	d, err := parseDescriptor([]byte{0xA5, 0x5A, 0x05, 0x00, 0x00, 0x40, 0x81})
	if err != nil {
		t.Fatalf("parseDescriptor: %v", err)
	}
	if d.size != 5 {
		t.Errorf("size = %d, want 5", d.size)
	}
	if d.sendMode != sendModeMulti {
		t.Errorf("sendMode = %d, want %d", d.sendMode, sendModeMulti)
	}
	if d.dataType != scanDataType {
		t.Errorf("dataType = %#x, want %#x", d.dataType, scanDataType)
	}
}

func TestParseDescriptor_BadSync(t *testing.T) {
	_, err := parseDescriptor([]byte{0xA5, 0x00, 0x05, 0x00, 0x00, 0x40, 0x81})
	if !errors.Is(err, ErrWrongDescriptor) {
		t.Errorf("err = %v, want ErrWrongDescriptor", err)
	}
	_, err = parseDescriptor([]byte{0xA5, 0x5A, 0x05})
	if !errors.Is(err, ErrWrongDescriptor) {
		t.Errorf("short descriptor err = %v, want ErrWrongDescriptor", err)
	}
}

// TestParseMeasurement decodes a handcrafted cabin: quality 15, angle 90,
// distance 1000mm, continuation of the current sweep.
func TestParseMeasurement(t *testing.T) {
	m, err := parseMeasurement([]byte{0x3E, 0x01, 0x2D, 0xA0, 0x0F})
	if err != nil {
		t.Fatalf("parseMeasurement: %v", err)
	}
	if m.NewScan {
		t.Error("NewScan = true, want false")
	}
	if m.Quality != 15 {
		t.Errorf("Quality = %d, want 15", m.Quality)
	}
	if m.Angle != 90.0 {
		t.Errorf("Angle = %v, want 90.0", m.Angle)
	}
	if m.Distance != 1000.0 {
		t.Errorf("Distance = %v, want 1000.0", m.Distance)
	}
}

func TestParseMeasurement_RoundTrip(t *testing.T) {
	cases := []struct {
		newScan  bool
		quality  int
		angle    float64
		distance float64
	}{
		{true, 5, 0, 250},
		{false, 47, 359.5, 6000.25},
		{false, 1, 180.015625, 0.25},
	}
	for _, c := range cases {
		m, err := parseMeasurement(measurementBytes(c.newScan, c.quality, c.angle, c.distance))
		if err != nil {
			t.Fatalf("parseMeasurement(%+v): %v", c, err)
		}
		if m.NewScan != c.newScan || m.Quality != c.quality || m.Angle != c.angle || m.Distance != c.distance {
			t.Errorf("round trip %+v → %+v", c, m)
		}
	}
}

func TestParseMeasurement_CheckBitClear(t *testing.T) {
	b := measurementBytes(false, 10, 45, 100)
	b[1] &^= 0x01
	if _, err := parseMeasurement(b); !errors.Is(err, ErrCheckBit) {
		t.Errorf("err = %v, want ErrCheckBit", err)
	}
}

func TestParseMeasurement_StartFlagBitsAgree(t *testing.T) {
	b := measurementBytes(false, 10, 45, 100)
	b[0] |= 0x03 // both flag bits set
	if _, err := parseMeasurement(b); !errors.Is(err, ErrNewScanBits) {
		t.Errorf("both bits set: err = %v, want ErrNewScanBits", err)
	}
	b[0] &^= 0x03 // both clear
	if _, err := parseMeasurement(b); !errors.Is(err, ErrNewScanBits) {
		t.Errorf("both bits clear: err = %v, want ErrNewScanBits", err)
	}
}
