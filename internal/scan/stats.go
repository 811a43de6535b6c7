package scan

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RevolutionStats summarises one revolution for the archive and the monitor.
// Distances are in millimetres.
type RevolutionStats struct {
	SampleCount    int     `json:"sample_count"`
	BucketsUpdated int     `json:"buckets_updated"`
	MinDistance    float64 `json:"min_mm"`
	MaxDistance    float64 `json:"max_mm"`
	MeanDistance   float64 `json:"mean_mm"`
	StdDevDistance float64 `json:"stddev_mm"`
}

// Summarize computes distance statistics over the samples of rev. An empty
// revolution yields the zero stats.
func Summarize(rev Revolution) RevolutionStats {
	st := RevolutionStats{SampleCount: len(rev.Samples)}
	if len(rev.Samples) == 0 {
		return st
	}

	seen := make(map[int]struct{}, len(rev.Samples))
	dists := make([]float64, 0, len(rev.Samples))
	st.MinDistance = math.MaxFloat64
	for _, s := range rev.Samples {
		seen[BucketIndex(s.Angle)] = struct{}{}
		dists = append(dists, s.Distance)
		if s.Distance < st.MinDistance {
			st.MinDistance = s.Distance
		}
		if s.Distance > st.MaxDistance {
			st.MaxDistance = s.Distance
		}
	}
	st.BucketsUpdated = len(seen)

	mean, stddev := stat.MeanStdDev(dists, nil)
	st.MeanDistance = mean
	if math.IsNaN(stddev) {
		// stat.MeanStdDev uses the unbiased estimator, undefined for n=1.
		stddev = 0
	}
	st.StdDevDistance = stddev
	return st
}

// Coverage reports the fraction of the 360 buckets this revolution updated.
func (st RevolutionStats) Coverage() float64 {
	return float64(st.BucketsUpdated) / float64(Buckets)
}
