package uplink

import "time"

// CaptureReport summarises the uplink traffic found in a packet capture.
// The stream carries no framing, so byte counts are the only ground truth:
// a non-zero trailing byte count means the capture ended mid-frame or the
// sender was cut off.
type CaptureReport struct {
	Packets       int           // TCP segments carrying payload
	Bytes         int64         // total payload bytes
	Frames        int           // whole frames seen on the wire
	TrailingBytes int           // payload left over after the last whole frame
	Duration      time.Duration // first payload segment to last
	LongestGap    time.Duration // largest spacing between payload segments
}

// FrameRate returns the mean frames per second across the capture window.
func (r *CaptureReport) FrameRate() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Duration.Seconds()
}
