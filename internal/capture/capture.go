// Package capture runs the acquisition loop: read one revolution from the
// sensor, fold it into the angle buffer, and push the packed frame upstream.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fieldrover/scanlink/internal/monitoring"
	"github.com/fieldrover/scanlink/internal/scan"
	"github.com/fieldrover/scanlink/internal/uplink"
)

// Sensor is the device surface the capture loop drives. *rplidar.Device
// implements it against real hardware; *scan.SyntheticSensor stands in for
// it in dev mode.
type Sensor interface {
	Connect() error
	Disconnect() error
	SetPWM(duty uint16) error
	StartMotor() error
	StopMotor() error
	NextRevolution(ctx context.Context) (scan.Revolution, error)
}

// FrameSink receives each packed frame. *uplink.Sender implements it.
type FrameSink interface {
	Send(frame []byte) error
}

// RevolutionHook observes each completed revolution and the frame built
// from it. The frame slice is reused between revolutions, so hooks must
// copy it if they keep it. A hook error is logged and counted; it never
// stops the loop.
type RevolutionHook interface {
	Name() string
	OnRevolution(rev scan.Revolution, frame []byte) error
}

// Config carries the capture parameters.
type Config struct {
	MotorPWM uint16
	Endpoint string
}

// Capture owns one acquisition session from sensor connect to shutdown.
type Capture struct {
	sensor Sensor
	cfg    Config
	stats  *Stats
	hooks  []RevolutionHook

	dial func(addr string) (FrameSink, error)

	buffer   scan.AngleBuffer
	wire     [scan.FrameBytes]byte
	stopOnce sync.Once
}

func New(sensor Sensor, cfg Config) *Capture {
	return &Capture{
		sensor: sensor,
		cfg:    cfg,
		stats:  NewStats(),
		dial: func(addr string) (FrameSink, error) {
			return uplink.Dial(addr)
		},
	}
}

// AddHook registers a revolution observer. Not safe to call once Run has
// started.
func (c *Capture) AddHook(h RevolutionHook) {
	c.hooks = append(c.hooks, h)
}

// Stats exposes the loop counters for the status server.
func (c *Capture) Stats() *Stats {
	return c.stats
}

// Run connects the sensor, spins the motor up, dials the collector and then
// loops forever building and sending one frame per revolution. A setup
// failure is returned with nothing to unwind. Once the loop is entered, any
// error ends collection: the motor is stopped and the sensor disconnected
// exactly once, and the error comes back to the caller. The uplink socket
// is left to process teardown; the collector just sees the stream end.
func (c *Capture) Run(ctx context.Context) error {
	if err := c.sensor.Connect(); err != nil {
		return fmt.Errorf("sensor connect failed: %w", err)
	}
	if err := c.sensor.SetPWM(c.cfg.MotorPWM); err != nil {
		return fmt.Errorf("motor PWM %d rejected: %w", c.cfg.MotorPWM, err)
	}
	if err := c.sensor.StartMotor(); err != nil {
		return fmt.Errorf("motor start failed: %w", err)
	}

	sink, err := c.dial(c.cfg.Endpoint)
	if err != nil {
		return err
	}

	monitoring.Logf("[capture] collecting at PWM %d, frames to %s", c.cfg.MotorPWM, c.cfg.Endpoint)

	err = c.loop(ctx, sink)
	if errors.Is(err, context.Canceled) {
		monitoring.Logf("[capture] capture stopped")
	} else {
		monitoring.Logf("Stopping collection.")
	}

	c.shutdown()
	return err
}

// loop is the hot path. The angle buffer deliberately carries over between
// revolutions: a bucket the sensor did not refresh keeps its previous
// distance.
func (c *Capture) loop(ctx context.Context, sink FrameSink) error {
	for {
		rev, err := c.sensor.NextRevolution(ctx)
		if err != nil {
			return err
		}

		c.buffer.Apply(rev)
		if err := scan.PutFrame(c.wire[:], c.buffer.Snapshot()); err != nil {
			return err
		}
		if err := sink.Send(c.wire[:]); err != nil {
			return err
		}

		c.stats.AddRevolution(len(rev.Samples))
		c.stats.AddFrame(scan.FrameBytes)

		for _, h := range c.hooks {
			if err := h.OnRevolution(rev, c.wire[:]); err != nil {
				c.stats.AddHookError()
				monitoring.Logf("[capture] %s hook failed: %v", h.Name(), err)
			}
		}
	}
}

// shutdown stops the motor and releases the sensor. Guarded so a capture
// session winds down at most once no matter how the loop ended.
func (c *Capture) shutdown() {
	c.stopOnce.Do(func() {
		if err := c.sensor.StopMotor(); err != nil {
			monitoring.Logf("[capture] motor stop failed: %v", err)
		}
		if err := c.sensor.Disconnect(); err != nil {
			monitoring.Logf("[capture] sensor disconnect failed: %v", err)
		}
	})
}
