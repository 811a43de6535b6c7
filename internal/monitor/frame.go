package monitor

import (
	"sync"
	"time"

	"github.com/fieldrover/scanlink/internal/scan"
)

// FrameSnapshot is the most recent revolution as the web endpoints serve it.
type FrameSnapshot struct {
	Seq        uint64               `json:"seq"`
	CapturedAt time.Time            `json:"captured_at"`
	Distances  scan.Frame           `json:"distances_mm"`
	Stats      scan.RevolutionStats `json:"stats"`
}

// FrameHolder keeps the latest frame behind a read-write lock so the HTTP
// handlers and the capture loop never block each other for long.
type FrameHolder struct {
	mu     sync.RWMutex
	latest *FrameSnapshot
}

func NewFrameHolder() *FrameHolder {
	return &FrameHolder{}
}

// Update replaces the held frame with the given revolution. The frame bytes
// are decoded into a private copy, so the caller may reuse its buffer.
func (h *FrameHolder) Update(rev scan.Revolution, frame []byte) (*FrameSnapshot, error) {
	distances, err := scan.DecodeFrame(frame)
	if err != nil {
		return nil, err
	}

	snap := &FrameSnapshot{
		Seq:        rev.Seq,
		CapturedAt: rev.CapturedAt,
		Distances:  distances,
		Stats:      scan.Summarize(rev),
	}

	h.mu.Lock()
	h.latest = snap
	h.mu.Unlock()
	return snap, nil
}

// Latest returns a copy of the most recent snapshot, or nil before the first
// revolution arrives.
func (h *FrameHolder) Latest() *FrameSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return nil
	}
	snap := *h.latest
	return &snap
}
