package scan

import "math"

// Buckets is the number of angle buckets in a buffer, one per integer degree.
const Buckets = 360

// BucketIndex returns the buffer slot for an angle in degrees. Placement is
// min(359, floor(angle)): anything at or above 359 degrees lands in the last
// bucket, including angles beyond 360 should the sensor ever report one.
// The clamp is load-bearing; callers must not validate angles away upstream.
func BucketIndex(angle float64) int {
	i := int(math.Floor(angle))
	if i > Buckets-1 {
		return Buckets - 1
	}
	return i
}

// AngleBuffer holds the most recent distance per integer degree. The buffer
// persists across revolutions: buckets a revolution does not touch keep
// whatever value an earlier revolution left there. Zero-valued buckets have
// never been measured.
//
// AngleBuffer is not safe for concurrent use; the capture loop is its only
// writer.
type AngleBuffer struct {
	cells [Buckets]float32
}

// Apply writes every sample of rev into its bucket. Later samples for the
// same bucket overwrite earlier ones within the revolution.
func (b *AngleBuffer) Apply(rev Revolution) {
	for _, s := range rev.Samples {
		b.cells[BucketIndex(s.Angle)] = float32(s.Distance)
	}
}

// Snapshot copies the current buckets into a Frame. The copy decouples the
// outbound frame from buffer mutation by the next revolution.
func (b *AngleBuffer) Snapshot() Frame {
	return Frame(b.cells)
}

// At returns the current value of bucket i.
func (b *AngleBuffer) At(i int) float32 {
	return b.cells[i]
}

// Reset zeroes every bucket.
func (b *AngleBuffer) Reset() {
	b.cells = [Buckets]float32{}
}
