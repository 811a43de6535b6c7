package scan

import (
	"context"
	"testing"
	"time"
)

func newTestSensor() *SyntheticSensor {
	s := NewSyntheticSensor()
	s.RPM = 6000 // 100 revolutions per second keeps the tests fast
	return s
}

// TestSyntheticSensor_Lifecycle verifies the connect / motor / disconnect
// bookkeeping the capture loop depends on.
func TestSyntheticSensor_Lifecycle(t *testing.T) {
	s := newTestSensor()

	if err := s.StartMotor(); err == nil {
		t.Error("StartMotor before Connect should fail")
	}

	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.SetPWM(1023); err != nil {
		t.Fatalf("SetPWM: %v", err)
	}
	if got := s.PWM(); got != 1023 {
		t.Errorf("PWM = %d, want 1023", got)
	}
	if err := s.StartMotor(); err != nil {
		t.Fatalf("StartMotor: %v", err)
	}
	if !s.MotorRunning() {
		t.Error("motor should be running after StartMotor")
	}

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if s.Connected() || s.MotorRunning() {
		t.Error("Disconnect should clear connected and motor state")
	}
}

// TestSyntheticSensor_RevolutionShape verifies generated sweeps look like
// real driver output: in-range angles, positive distances, plausible count.
func TestSyntheticSensor_RevolutionShape(t *testing.T) {
	s := newTestSensor()
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.StartMotor(); err != nil {
		t.Fatalf("StartMotor: %v", err)
	}

	rev, err := s.NextRevolution(context.Background())
	if err != nil {
		t.Fatalf("NextRevolution: %v", err)
	}
	if rev.Seq != 1 {
		t.Errorf("first revolution Seq = %d, want 1", rev.Seq)
	}
	if len(rev.Samples) < s.SamplesPerRev/2 {
		t.Errorf("revolution has %d samples, want at least %d", len(rev.Samples), s.SamplesPerRev/2)
	}
	for _, smp := range rev.Samples {
		if smp.Angle < 0 || smp.Angle >= 360 {
			t.Fatalf("angle %v out of [0, 360)", smp.Angle)
		}
		if smp.Distance <= 0 {
			t.Fatalf("distance %v not positive", smp.Distance)
		}
		if smp.Quality <= 0 {
			t.Fatalf("quality %d not positive", smp.Quality)
		}
	}
}

// TestSyntheticSensor_HonoursContext verifies a cancelled context interrupts
// the revolution wait.
func TestSyntheticSensor_HonoursContext(t *testing.T) {
	s := NewSyntheticSensor()
	s.RPM = 1 // one-minute period, must not be waited out
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.StartMotor(); err != nil {
		t.Fatalf("StartMotor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.NextRevolution(ctx)
	if err == nil {
		t.Fatal("NextRevolution should fail when the context expires")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("NextRevolution took %v to observe cancellation", elapsed)
	}
}

// TestSyntheticSensor_FaultInjection verifies FailAfter trips after the
// configured number of revolutions.
func TestSyntheticSensor_FaultInjection(t *testing.T) {
	s := newTestSensor()
	s.FailAfter = 2
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.StartMotor(); err != nil {
		t.Fatalf("StartMotor: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := s.NextRevolution(ctx); err != nil {
			t.Fatalf("revolution %d: %v", i+1, err)
		}
	}
	if _, err := s.NextRevolution(ctx); err == nil {
		t.Fatal("expected injected fault on third revolution")
	}
}
