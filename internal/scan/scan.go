// Package scan holds the domain types for rotating-LIDAR capture: samples,
// revolutions, the 360-bucket angle buffer, and the wire frame codec.
package scan

import "time"

// Sample is a single sensor reading within one revolution. Angle is in
// degrees [0, 360) and Distance in millimetres. Quality is carried through
// from the sensor but plays no part in bucket placement.
type Sample struct {
	Quality  int
	Angle    float64
	Distance float64
}

// Revolution is one full sweep of the sensor: the ordered samples the driver
// grouped between two new-scan flags.
type Revolution struct {
	Seq        uint64
	CapturedAt time.Time
	Samples    []Sample
}
