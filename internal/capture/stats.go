package capture

import (
	"fmt"
	"sync"
	"time"

	"github.com/fieldrover/scanlink/internal/monitoring"
	"github.com/fieldrover/scanlink/internal/timeutil"
)

// StatsSnapshot represents a snapshot of current statistics
type StatsSnapshot struct {
	FramesPerSec  float64
	SamplesPerSec float64
	KBPerSec      float64
	HookErrors    int64
	Timestamp     time.Time
}

// Stats tracks capture loop statistics with thread-safe operations
type Stats struct {
	clock timeutil.Clock

	mu              sync.Mutex
	revolutionCount int64
	sampleCount     int64
	frameCount      int64
	byteCount       int64
	hookErrors      int64

	totalFrames  int64
	totalSamples int64

	lastReset      time.Time
	startTime      time.Time
	latestSnapshot *StatsSnapshot
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return newStatsWithClock(timeutil.RealClock{})
}

func newStatsWithClock(clock timeutil.Clock) *Stats {
	now := clock.Now()
	return &Stats{
		clock:     clock,
		lastReset: now,
		startTime: now,
	}
}

// AddRevolution records one completed revolution and its sample count
func (s *Stats) AddRevolution(samples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revolutionCount++
	s.sampleCount += int64(samples)
	s.totalSamples += int64(samples)
}

// AddFrame records one frame pushed upstream
func (s *Stats) AddFrame(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount++
	s.byteCount += int64(bytes)
	s.totalFrames++
}

// AddHookError increments the hook failure count
func (s *Stats) AddHookError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hookErrors++
}

// GetAndReset returns current interval stats and resets the interval counters.
// The cumulative totals are not touched.
func (s *Stats) GetAndReset() (revolutions, samples, frames, bytes, hookErrors int64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	duration = now.Sub(s.lastReset)
	revolutions = s.revolutionCount
	samples = s.sampleCount
	frames = s.frameCount
	bytes = s.byteCount
	hookErrors = s.hookErrors

	s.revolutionCount = 0
	s.sampleCount = 0
	s.frameCount = 0
	s.byteCount = 0
	s.hookErrors = 0
	s.lastReset = now

	return
}

// LogStats logs formatted statistics and stores a snapshot for the web interface
func (s *Stats) LogStats() {
	revolutions, samples, frames, bytes, hookErrors, duration := s.GetAndReset()
	if revolutions > 0 || hookErrors > 0 {
		framesPerSec := float64(frames) / duration.Seconds()
		samplesPerSec := float64(samples) / duration.Seconds()
		kbPerSec := float64(bytes) / duration.Seconds() / 1024

		s.mu.Lock()
		s.latestSnapshot = &StatsSnapshot{
			FramesPerSec:  framesPerSec,
			SamplesPerSec: samplesPerSec,
			KBPerSec:      kbPerSec,
			HookErrors:    hookErrors,
			Timestamp:     s.clock.Now(),
		}
		s.mu.Unlock()

		logMsg := fmt.Sprintf("Capture stats (/sec): %.1f frames, %s samples, %.1f KB",
			framesPerSec, FormatWithCommas(int64(samplesPerSec)), kbPerSec)
		if hookErrors > 0 {
			logMsg += fmt.Sprintf(", %d hook errors", hookErrors)
		}

		monitoring.Logf("%s", logMsg)
	}
}

// TotalFrames returns the number of frames sent since startup
func (s *Stats) TotalFrames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFrames
}

// TotalSamples returns the number of samples seen since startup
func (s *Stats) TotalSamples() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSamples
}

// GetUptime returns the time since the stats were created
func (s *Stats) GetUptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Since(s.startTime)
}

// GetLatestSnapshot returns the most recent stats snapshot for the web interface
func (s *Stats) GetLatestSnapshot() *StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latestSnapshot == nil {
		return nil
	}
	// Return a copy to avoid race conditions
	snapshot := *s.latestSnapshot
	return &snapshot
}

// FormatWithCommas formats a number with thousands separators
func FormatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}
