package scan

import (
	"fmt"
	"io"
	"os"
)

// Recorder appends frames to a file exactly as they went out on the wire:
// consecutive FrameBytes-sized frames with no framing. A recording is
// therefore a byte-faithful capture of the uplink stream and can be replayed
// against a ground station with cmd/tools/frame-replay.
type Recorder struct {
	f      *os.File
	frames uint64
}

// NewRecorder opens path for appending, creating it if needed.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", path, err)
	}
	return &Recorder{f: f}, nil
}

// Record appends one encoded frame.
func (r *Recorder) Record(frame []byte) error {
	if len(frame) != FrameBytes {
		return fmt.Errorf("refusing to record %d-byte frame, want %d", len(frame), FrameBytes)
	}
	if _, err := r.f.Write(frame); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames recorded through this Recorder.
func (r *Recorder) Frames() uint64 { return r.frames }

// Close flushes and closes the recording file.
func (r *Recorder) Close() error { return r.f.Close() }

// Replayer iterates the frames of a recording file in order.
type Replayer struct {
	f     *os.File
	total int64
}

// OpenReplay opens a recording written by Recorder. A trailing partial frame
// (a capture cut mid-write) is tolerated at open time and reported by Next.
func OpenReplay(path string) (*Replayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat recording %s: %w", path, err)
	}
	return &Replayer{f: f, total: fi.Size() / FrameBytes}, nil
}

// FrameCount returns the number of complete frames in the recording.
func (r *Replayer) FrameCount() int64 { return r.total }

// Next returns the next frame. It returns io.EOF after the last complete
// frame and io.ErrUnexpectedEOF if the file ends mid-frame.
func (r *Replayer) Next() ([]byte, error) {
	buf := make([]byte, FrameBytes)
	if _, err := io.ReadFull(r.f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Rewind seeks back to the first frame.
func (r *Replayer) Rewind() error {
	_, err := r.f.Seek(0, io.SeekStart)
	return err
}

// Close closes the recording file.
func (r *Replayer) Close() error { return r.f.Close() }
