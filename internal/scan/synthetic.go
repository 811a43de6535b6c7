package scan

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// SyntheticSensor generates plausible indoor revolutions without hardware:
// a rectangular room with a slow-moving visitor orbiting the sensor. It
// satisfies the capture loop's sensor contract, so dev-mode runs exercise
// the full accumulate-and-send path.
type SyntheticSensor struct {
	RPM           float64 // revolutions per minute
	SamplesPerRev int     // readings attempted per revolution
	RoomWidthMM   float64
	RoomDepthMM   float64
	DropoutRate   float64 // fraction of readings with no return
	FailAfter     uint64  // if nonzero, fault after this many revolutions

	rng       *rand.Rand
	seq       uint64
	startedAt time.Time
	connected bool
	motorOn   bool
	pwm       uint16
}

// NewSyntheticSensor returns a generator tuned to look like a small office
// scanned at five revolutions per second.
func NewSyntheticSensor() *SyntheticSensor {
	return &SyntheticSensor{
		RPM:           300,
		SamplesPerRev: 340,
		RoomWidthMM:   6000,
		RoomDepthMM:   4000,
		DropoutRate:   0.05,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SyntheticSensor) Connect() error {
	s.connected = true
	return nil
}

func (s *SyntheticSensor) Disconnect() error {
	s.connected = false
	s.motorOn = false
	return nil
}

func (s *SyntheticSensor) SetPWM(duty uint16) error {
	s.pwm = duty
	return nil
}

func (s *SyntheticSensor) StartMotor() error {
	if !s.connected {
		return errors.New("synthetic sensor: start motor before connect")
	}
	s.motorOn = true
	s.startedAt = time.Now()
	return nil
}

func (s *SyntheticSensor) StopMotor() error {
	s.motorOn = false
	return nil
}

// Connected reports whether Connect has been called without a matching
// Disconnect.
func (s *SyntheticSensor) Connected() bool { return s.connected }

// MotorRunning reports whether the simulated motor is spinning.
func (s *SyntheticSensor) MotorRunning() bool { return s.motorOn }

// PWM returns the last duty value set.
func (s *SyntheticSensor) PWM() uint16 { return s.pwm }

// NextRevolution blocks for one revolution period, then returns the next
// generated sweep. It observes ctx so shutdown does not wait on the timer.
func (s *SyntheticSensor) NextRevolution(ctx context.Context) (Revolution, error) {
	if !s.connected {
		return Revolution{}, errors.New("synthetic sensor not connected")
	}
	if !s.motorOn {
		return Revolution{}, errors.New("synthetic sensor motor is stopped")
	}
	if s.FailAfter > 0 && s.seq >= s.FailAfter {
		return Revolution{}, errors.New("synthetic sensor injected fault")
	}

	period := time.Duration(float64(time.Minute) / s.RPM)
	t := time.NewTimer(period)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Revolution{}, ctx.Err()
	case <-t.C:
	}

	s.seq++
	elapsed := time.Since(s.startedAt).Seconds()
	rev := Revolution{
		Seq:        s.seq,
		CapturedAt: time.Now(),
		Samples:    make([]Sample, 0, s.SamplesPerRev),
	}

	// The visitor orbits counter-clockwise at 45 degrees per second, 1.5m out.
	visitorAngle := math.Mod(elapsed*45, 360)
	for i := 0; i < s.SamplesPerRev; i++ {
		if s.rng.Float64() < s.DropoutRate {
			continue
		}
		angle := math.Mod((float64(i)+s.rng.Float64())*360/float64(s.SamplesPerRev), 360)
		dist := s.wallDistance(angle)
		if angularGap(angle, visitorAngle) < 7 {
			dist = 1500
		}
		dist += s.rng.NormFloat64() * 12
		if dist < 0 {
			continue
		}
		rev.Samples = append(rev.Samples, Sample{
			Quality:  10 + s.rng.Intn(37),
			Angle:    angle,
			Distance: dist,
		})
	}
	return rev, nil
}

// wallDistance is the range to the wall of a RoomWidth x RoomDepth rectangle
// centred on the sensor.
func (s *SyntheticSensor) wallDistance(angleDeg float64) float64 {
	rad := angleDeg * math.Pi / 180
	dx, dy := math.Inf(1), math.Inf(1)
	if c := math.Abs(math.Cos(rad)); c > 1e-9 {
		dx = s.RoomWidthMM / 2 / c
	}
	if c := math.Abs(math.Sin(rad)); c > 1e-9 {
		dy = s.RoomDepthMM / 2 / c
	}
	return math.Min(dx, dy)
}

// angularGap is the smallest separation between two bearings in degrees.
func angularGap(a, b float64) float64 {
	d := math.Abs(math.Mod(a-b, 360))
	if d > 180 {
		d = 360 - d
	}
	return d
}
