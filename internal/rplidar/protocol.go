package rplidar

import (
	"encoding/binary"
	"fmt"
)

// Request framing: a sync byte, a command byte, and for payload commands a
// length byte, the payload, and an XOR checksum over everything before it.
const (
	syncByte     = 0xA5
	descSyncByte = 0x5A

	cmdStop      = 0x25
	cmdReset     = 0x40
	cmdScan      = 0x20
	cmdForceScan = 0x21
	cmdGetInfo   = 0x50
	cmdGetHealth = 0x52
	cmdSetPWM    = 0xF0
)

// Response descriptor layout: two sync bytes, a 32-bit little-endian word
// whose low 30 bits are the response size and high 2 bits the send mode,
// then a data type byte.
const descriptorLen = 7

// Send modes from the descriptor.
const (
	sendModeSingle    = 0
	sendModeMulti     = 1
	scanDataType      = 0x81
	infoDataType      = 0x04
	healthDataType    = 0x06
	infoResponseLen   = 20
	healthResponseLen = 3
	measurementLen    = 5
)

// encodeCommand frames a bare command.
func encodeCommand(cmd byte) []byte {
	return []byte{syncByte, cmd}
}

// encodePayloadCommand frames a command with payload and trailing checksum.
func encodePayloadCommand(cmd byte, payload []byte) []byte {
	req := make([]byte, 0, 3+len(payload)+1)
	req = append(req, syncByte, cmd, byte(len(payload)))
	req = append(req, payload...)
	var sum byte
	for _, b := range req {
		sum ^= b
	}
	return append(req, sum)
}

// encodeSetPWM frames the SET_PWM command for the given duty.
func encodeSetPWM(duty uint16) []byte {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, duty)
	return encodePayloadCommand(cmdSetPWM, payload)
}

// descriptor is a parsed response descriptor.
type descriptor struct {
	size     int
	sendMode byte
	dataType byte
}

// parseDescriptor validates and decodes a 7-byte response descriptor.
func parseDescriptor(buf []byte) (descriptor, error) {
	var d descriptor
	if len(buf) != descriptorLen {
		return d, fmt.Errorf("%w: descriptor is %d bytes, want %d", ErrWrongDescriptor, len(buf), descriptorLen)
	}
	if buf[0] != syncByte || buf[1] != descSyncByte {
		return d, fmt.Errorf("%w: bad sync bytes %#x %#x", ErrWrongDescriptor, buf[0], buf[1])
	}
	word := binary.LittleEndian.Uint32(buf[2:6])
	d.size = int(word & 0x3FFFFFFF)
	d.sendMode = byte(word >> 30)
	d.dataType = buf[6]
	return d, nil
}

// Measurement is one decoded 5-byte scan cabin.
type Measurement struct {
	NewScan  bool
	Quality  int
	Angle    float64 // degrees
	Distance float64 // millimetres
}

// parseMeasurement decodes one scan cabin. The start flag is carried in two
// complementary bits; a pair that agrees means the byte stream slipped.
func parseMeasurement(b []byte) (Measurement, error) {
	var m Measurement
	if len(b) != measurementLen {
		return m, fmt.Errorf("rplidar: measurement is %d bytes, want %d", len(b), measurementLen)
	}
	newScan := b[0]&0x01 != 0
	invNewScan := b[0]&0x02 != 0
	if newScan == invNewScan {
		return m, ErrNewScanBits
	}
	if b[1]&0x01 == 0 {
		return m, ErrCheckBit
	}
	m.NewScan = newScan
	m.Quality = int(b[0] >> 2)
	m.Angle = float64(uint16(b[1])>>1|uint16(b[2])<<7) / 64.0
	m.Distance = float64(uint16(b[3])|uint16(b[4])<<8) / 4.0
	return m, nil
}
