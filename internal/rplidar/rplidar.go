// Package rplidar drives Slamtec RPLidar A-series scanners over a serial
// port: motor PWM control, health and info queries, and the 5-byte scan
// measurement stream grouped into per-revolution batches.
package rplidar

import (
	"errors"
	"fmt"
)

// Motor PWM duty limits. StartMotor uses the last duty set with SetPWM, or
// DefaultMotorPWM if none was set.
const (
	DefaultMotorPWM uint16 = 660
	MaxMotorPWM     uint16 = 1023
)

// Protocol faults. All of them indicate a desynchronised or misbehaving
// sensor; callers treat any of them as fatal for the capture session.
var (
	ErrWrongDescriptor = errors.New("rplidar: unexpected response descriptor")
	ErrCheckBit        = errors.New("rplidar: measurement check bit not set")
	ErrNewScanBits     = errors.New("rplidar: new-scan flag bits agree, stream desynced")
	ErrDeviceFailure   = errors.New("rplidar: device reports internal failure")
)

// Health is the GET_HEALTH response.
type Health struct {
	Status    HealthStatus
	ErrorCode uint16
}

// HealthStatus is the device-reported health state.
type HealthStatus byte

const (
	HealthGood    HealthStatus = 0
	HealthWarning HealthStatus = 1
	HealthError   HealthStatus = 2
)

func (s HealthStatus) String() string {
	switch s {
	case HealthGood:
		return "good"
	case HealthWarning:
		return "warning"
	case HealthError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// Info is the GET_INFO response.
type Info struct {
	Model           byte
	FirmwareMinor   byte
	FirmwareMajor   byte
	Hardware        byte
	SerialNumberHex string
}

// Firmware renders the firmware revision as major.minor.
func (i Info) Firmware() string {
	return fmt.Sprintf("%d.%d", i.FirmwareMajor, i.FirmwareMinor)
}
