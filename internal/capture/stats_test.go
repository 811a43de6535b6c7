package capture

import (
	"testing"
	"time"

	"github.com/fieldrover/scanlink/internal/timeutil"
)

func TestStatsAccumulateAndReset(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC))
	stats := newStatsWithClock(clock)

	stats.AddRevolution(340)
	stats.AddRevolution(12)
	stats.AddFrame(1440)
	stats.AddFrame(1440)
	stats.AddHookError()
	clock.Advance(2 * time.Second)

	revolutions, samples, frames, bytes, hookErrors, duration := stats.GetAndReset()
	if revolutions != 2 {
		t.Errorf("revolutions = %d, want 2", revolutions)
	}
	if samples != 352 {
		t.Errorf("samples = %d, want 352", samples)
	}
	if frames != 2 {
		t.Errorf("frames = %d, want 2", frames)
	}
	if bytes != 2880 {
		t.Errorf("bytes = %d, want 2880", bytes)
	}
	if hookErrors != 1 {
		t.Errorf("hookErrors = %d, want 1", hookErrors)
	}
	if duration != 2*time.Second {
		t.Errorf("duration = %v, want 2s", duration)
	}

	// Interval counters are cleared, totals are not
	revolutions, samples, frames, _, _, _ = stats.GetAndReset()
	if revolutions != 0 || samples != 0 || frames != 0 {
		t.Errorf("counters after reset = %d/%d/%d, want 0/0/0", revolutions, samples, frames)
	}
	if got := stats.TotalFrames(); got != 2 {
		t.Errorf("TotalFrames() = %d, want 2", got)
	}
	if got := stats.TotalSamples(); got != 352 {
		t.Errorf("TotalSamples() = %d, want 352", got)
	}
}

func TestStatsSnapshot(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC))
	stats := newStatsWithClock(clock)

	if snapshot := stats.GetLatestSnapshot(); snapshot != nil {
		t.Errorf("expected nil snapshot before any LogStats, got %+v", snapshot)
	}

	stats.AddRevolution(340)
	stats.AddFrame(1440)
	clock.Advance(2 * time.Second)
	stats.LogStats()

	snapshot := stats.GetLatestSnapshot()
	if snapshot == nil {
		t.Fatal("expected snapshot after LogStats")
	}
	if snapshot.FramesPerSec != 0.5 {
		t.Errorf("FramesPerSec = %v, want 0.5", snapshot.FramesPerSec)
	}
	if snapshot.SamplesPerSec != 170 {
		t.Errorf("SamplesPerSec = %v, want 170", snapshot.SamplesPerSec)
	}
	if !snapshot.Timestamp.Equal(clock.Now()) {
		t.Errorf("snapshot timestamp = %v, want %v", snapshot.Timestamp, clock.Now())
	}
}

func TestStatsSnapshotSkippedWhenIdle(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC))
	stats := newStatsWithClock(clock)

	clock.Advance(time.Minute)
	stats.LogStats()

	if snapshot := stats.GetLatestSnapshot(); snapshot != nil {
		t.Errorf("expected no snapshot for an idle interval, got %+v", snapshot)
	}
}

func TestStatsUptime(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC))
	stats := newStatsWithClock(clock)

	clock.Advance(90 * time.Second)
	if uptime := stats.GetUptime(); uptime != 90*time.Second {
		t.Errorf("GetUptime() = %v, want 90s", uptime)
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{13440, "13,440"},
		{1234567, "1,234,567"},
	}

	for _, test := range tests {
		if got := FormatWithCommas(test.input); got != test.expected {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", test.input, got, test.expected)
		}
	}
}
