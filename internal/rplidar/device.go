package rplidar

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fieldrover/scanlink/internal/monitoring"
	"github.com/fieldrover/scanlink/internal/scan"
)

// MinRevolutionSamples is the smallest sweep worth yielding. Sweeps at or
// under this size (motor still spinning up, or a glitched rotation) are
// discarded, matching the upstream driver the original deployment used.
const MinRevolutionSamples = 5

// Default port poll and response timing.
const (
	defaultPollTimeout     = 100 * time.Millisecond
	defaultResponseTimeout = 2 * time.Second
)

// Device is an RPLidar unit on an open serial port. Methods are not safe for
// concurrent use; the capture loop is the only caller.
type Device struct {
	port Porter

	motorPWM     uint16
	motorRunning bool
	scanning     bool

	seq     uint64
	partial []scan.Sample
	readBuf [measurementLen]byte

	minRevolutionSamples int
	pollTimeout          time.Duration
	responseTimeout      time.Duration
}

// NewDevice wraps an already-open port. Use Open to go straight from a
// device path.
func NewDevice(port Porter) *Device {
	return &Device{
		port:                 port,
		motorPWM:             DefaultMotorPWM,
		minRevolutionSamples: MinRevolutionSamples,
		pollTimeout:          defaultPollTimeout,
		responseTimeout:      defaultResponseTimeout,
	}
}

// Connect clears stale input and verifies the device answers a health query.
// It must complete before motor or scan commands are issued.
func (d *Device) Connect() error {
	if err := d.port.SetReadTimeout(d.pollTimeout); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}
	if err := d.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	h, err := d.Health()
	if err != nil {
		return fmt.Errorf("connect handshake: %w", err)
	}
	if h.Status == HealthError {
		return fmt.Errorf("%w: health error code %#04x", ErrDeviceFailure, h.ErrorCode)
	}
	monitoring.Logf("[rplidar] connected, health %s", h.Status)
	return nil
}

// Disconnect closes the serial port.
func (d *Device) Disconnect() error {
	monitoring.Logf("[rplidar] disconnecting")
	return d.port.Close()
}

// Health issues GET_HEALTH and decodes the status response.
func (d *Device) Health() (Health, error) {
	if err := d.send(encodeCommand(cmdGetHealth)); err != nil {
		return Health{}, err
	}
	desc, err := d.readDescriptor(nil)
	if err != nil {
		return Health{}, err
	}
	if desc.dataType != healthDataType || desc.size != healthResponseLen {
		return Health{}, fmt.Errorf("%w: health descriptor type=%#x size=%d", ErrWrongDescriptor, desc.dataType, desc.size)
	}
	buf := make([]byte, healthResponseLen)
	if err := d.readFull(nil, buf); err != nil {
		return Health{}, err
	}
	return Health{
		Status:    HealthStatus(buf[0]),
		ErrorCode: binary.LittleEndian.Uint16(buf[1:3]),
	}, nil
}

// Info issues GET_INFO and decodes the model/firmware/serial response.
func (d *Device) Info() (Info, error) {
	if err := d.send(encodeCommand(cmdGetInfo)); err != nil {
		return Info{}, err
	}
	desc, err := d.readDescriptor(nil)
	if err != nil {
		return Info{}, err
	}
	if desc.dataType != infoDataType || desc.size != infoResponseLen {
		return Info{}, fmt.Errorf("%w: info descriptor type=%#x size=%d", ErrWrongDescriptor, desc.dataType, desc.size)
	}
	buf := make([]byte, infoResponseLen)
	if err := d.readFull(nil, buf); err != nil {
		return Info{}, err
	}
	return Info{
		Model:           buf[0],
		FirmwareMinor:   buf[1],
		FirmwareMajor:   buf[2],
		Hardware:        buf[3],
		SerialNumberHex: hex.EncodeToString(buf[4:]),
	}, nil
}

// SetPWM applies a motor duty and remembers it as the duty StartMotor uses.
func (d *Device) SetPWM(duty uint16) error {
	if duty > MaxMotorPWM {
		return fmt.Errorf("rplidar: pwm duty %d exceeds max %d", duty, MaxMotorPWM)
	}
	if err := d.send(encodeSetPWM(duty)); err != nil {
		return err
	}
	d.motorPWM = duty
	return nil
}

// StartMotor drops DTR (A1 accessory boards gate the motor on it) and applies
// the configured PWM duty (A2/A3 boards follow the PWM line instead).
func (d *Device) StartMotor() error {
	if err := d.port.SetDTR(false); err != nil {
		return fmt.Errorf("start motor: %w", err)
	}
	if err := d.send(encodeSetPWM(d.motorPWM)); err != nil {
		return fmt.Errorf("start motor: %w", err)
	}
	d.motorRunning = true
	monitoring.Logf("[rplidar] motor started at duty %d", d.motorPWM)
	return nil
}

// StopMotor zeroes the PWM duty and raises DTR.
func (d *Device) StopMotor() error {
	if err := d.send(encodeSetPWM(0)); err != nil {
		return fmt.Errorf("stop motor: %w", err)
	}
	time.Sleep(time.Millisecond)
	if err := d.port.SetDTR(true); err != nil {
		return fmt.Errorf("stop motor: %w", err)
	}
	d.motorRunning = false
	monitoring.Logf("[rplidar] motor stopped")
	return nil
}

// MotorRunning reports whether the motor has been started and not stopped.
func (d *Device) MotorRunning() bool { return d.motorRunning }

// StartScan puts the device into continuous scan mode and validates the
// stream descriptor. NextRevolution calls it lazily if needed.
func (d *Device) StartScan() error {
	if err := d.send(encodeCommand(cmdScan)); err != nil {
		return err
	}
	desc, err := d.readDescriptor(nil)
	if err != nil {
		return err
	}
	if desc.dataType != scanDataType || desc.size != measurementLen || desc.sendMode != sendModeMulti {
		return fmt.Errorf("%w: scan descriptor type=%#x size=%d mode=%d",
			ErrWrongDescriptor, desc.dataType, desc.size, desc.sendMode)
	}
	d.scanning = true
	return nil
}

// StopScan leaves scan mode and drains whatever the sensor was mid-sending.
func (d *Device) StopScan() error {
	if err := d.send(encodeCommand(cmdStop)); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	if err := d.port.ResetInputBuffer(); err != nil {
		return err
	}
	d.scanning = false
	d.partial = nil
	return nil
}

// Reset reboots the sensor core.
func (d *Device) Reset() error {
	if err := d.send(encodeCommand(cmdReset)); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	d.scanning = false
	d.partial = nil
	return d.port.ResetInputBuffer()
}

// NextRevolution blocks until the sensor completes its current sweep and
// returns it. Readings with zero quality or zero distance are dropped, and a
// sweep of MinRevolutionSamples or fewer readings is discarded rather than
// yielded. The sample flagged new-scan opens the next sweep.
func (d *Device) NextRevolution(ctx context.Context) (scan.Revolution, error) {
	if !d.scanning {
		if err := d.StartScan(); err != nil {
			return scan.Revolution{}, err
		}
	}

	for {
		if err := d.readFull(ctx, d.readBuf[:]); err != nil {
			return scan.Revolution{}, err
		}
		m, err := parseMeasurement(d.readBuf[:])
		if err != nil {
			return scan.Revolution{}, err
		}

		if m.NewScan {
			completed := d.partial
			d.partial = nil
			if m.Quality > 0 && m.Distance > 0 {
				d.partial = append(d.partial, scan.Sample{Quality: m.Quality, Angle: m.Angle, Distance: m.Distance})
			}
			if len(completed) > d.minRevolutionSamples {
				d.seq++
				return scan.Revolution{Seq: d.seq, CapturedAt: time.Now(), Samples: completed}, nil
			}
			continue
		}

		if m.Quality > 0 && m.Distance > 0 {
			d.partial = append(d.partial, scan.Sample{Quality: m.Quality, Angle: m.Angle, Distance: m.Distance})
		}
	}
}

// send writes a full request to the port.
func (d *Device) send(req []byte) error {
	n, err := d.port.Write(req)
	if err != nil {
		return fmt.Errorf("rplidar: write command %#x: %w", req[1], err)
	}
	if n != len(req) {
		return fmt.Errorf("rplidar: short command write: %d of %d bytes", n, len(req))
	}
	return nil
}

// readDescriptor reads and parses a 7-byte response descriptor.
func (d *Device) readDescriptor(ctx context.Context) (descriptor, error) {
	buf := make([]byte, descriptorLen)
	if err := d.readFull(ctx, buf); err != nil {
		return descriptor{}, err
	}
	return parseDescriptor(buf)
}

// readFull fills buf from the port. The port read timeout acts as a poll
// interval: each idle poll checks ctx, and silence past the response timeout
// is an error so a dead sensor surfaces instead of hanging the loop.
func (d *Device) readFull(ctx context.Context, buf []byte) error {
	deadline := time.Now().Add(d.responseTimeout)
	got := 0
	for got < len(buf) {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		n, err := d.port.Read(buf[got:])
		if err != nil {
			return fmt.Errorf("rplidar: read: %w", err)
		}
		got += n
		if n == 0 && time.Now().After(deadline) {
			return fmt.Errorf("rplidar: timed out reading response: %d of %d bytes", got, len(buf))
		}
	}
	return nil
}
