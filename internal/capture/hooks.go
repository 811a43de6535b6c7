package capture

import (
	"github.com/fieldrover/scanlink/internal/scan"
)

// RecorderHook appends every outgoing frame to an on-disk recording so a
// session can be replayed later with frame-replay.
type RecorderHook struct {
	*scan.Recorder
}

func (RecorderHook) Name() string { return "recorder" }

func (h RecorderHook) OnRevolution(_ scan.Revolution, frame []byte) error {
	return h.Record(frame)
}
