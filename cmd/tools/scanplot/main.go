// Command scanplot renders one frame of a recording as a PNG scatter plot.
//
// Each frame holds one distance per whole degree of bearing; the plot
// converts those polar readings to cartesian coordinates around the sensor
// origin, so the output looks like a floor plan of whatever the sensor saw.
//
// Usage:
//
//	go run ./cmd/tools/scanplot [flags]
//
// Flags:
//
//	-record  Path to the recording file (required)
//	-frame   Frame index to plot, -1 for the last (default: 0)
//	-out     Output PNG path (default: <record>_frameNNNN.png)
//	-units   Axis units: mm, cm or m (default: mm)
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/fieldrover/scanlink/internal/scan"
	"github.com/fieldrover/scanlink/internal/units"
)

func main() {
	record := flag.String("record", "", "Path to the recording file (required)")
	frameIdx := flag.Int64("frame", 0, "Frame index to plot, -1 for the last")
	out := flag.String("out", "", "Output PNG path")
	unit := flag.String("units", units.MM, "Axis units")
	flag.Parse()

	if *record == "" {
		log.Fatal("Error: -record flag is required")
	}
	if !units.IsValid(*unit) {
		log.Fatalf("Error: invalid -units %q, valid values are: %s", *unit, units.GetValidUnitsString())
	}

	replayer, err := scan.OpenReplay(*record)
	if err != nil {
		log.Fatalf("Failed to open recording: %v", err)
	}
	defer replayer.Close()

	total := replayer.FrameCount()
	if total == 0 {
		log.Fatalf("Recording %s contains no complete frames", *record)
	}

	idx := *frameIdx
	if idx == -1 {
		idx = total - 1
	}
	if idx < 0 || idx >= total {
		log.Fatalf("Frame %d out of range, recording has %d frames", idx, total)
	}

	frame, err := readFrame(replayer, idx)
	if err != nil {
		log.Fatalf("Failed to read frame %d: %v", idx, err)
	}

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(*record, filepath.Ext(*record)) + fmt.Sprintf("_frame%04d.png", idx)
	}

	points, maxRange := frameToXYs(frame, *unit)
	if len(points) == 0 {
		log.Fatalf("Frame %d has no readings to plot", idx)
	}

	if err := renderScatter(points, maxRange, *unit, idx, filepath.Base(*record), outPath); err != nil {
		log.Fatalf("Failed to render plot: %v", err)
	}

	log.Printf("Wrote %s (%d of %d buckets hit, max range %.1f %s)",
		outPath, len(points), scan.Buckets, maxRange, *unit)
}

// readFrame advances the replayer to the frame at index idx and decodes it.
func readFrame(r *scan.Replayer, idx int64) (scan.Frame, error) {
	for i := int64(0); i < idx; i++ {
		if _, err := r.Next(); err != nil {
			return scan.Frame{}, err
		}
	}
	raw, err := r.Next()
	if err != nil {
		return scan.Frame{}, err
	}
	return scan.DecodeFrame(raw)
}

// frameToXYs converts per-degree distances to cartesian points in the
// requested units. Empty buckets are skipped, so the returned length is the
// number of degrees that actually got a reading.
func frameToXYs(frame scan.Frame, unit string) (plotter.XYs, float64) {
	pts := make(plotter.XYs, 0, scan.Buckets)
	maxRange := 0.0
	for deg, distMM := range frame {
		if distMM <= 0 {
			continue
		}
		dist := units.ConvertDistance(float64(distMM), unit)
		theta := float64(deg) * math.Pi / 180
		pts = append(pts, plotter.XY{X: dist * math.Cos(theta), Y: dist * math.Sin(theta)})
		if dist > maxRange {
			maxRange = dist
		}
	}
	return pts, maxRange
}

func renderScatter(points plotter.XYs, maxRange float64, unit string, idx int64, recordName, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Frame %d of %s", idx, recordName)
	p.X.Label.Text = fmt.Sprintf("X (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("Y (%s)", unit)

	// Symmetric axes keep the sensor origin centred and the aspect square.
	pad := maxRange * 1.05
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	s, err := plotter.NewScatter(points)
	if err != nil {
		return err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	s.GlyphStyle.Color = color.RGBA{R: 0x35, G: 0xa7, B: 0xff, A: 255}

	p.Add(plotter.NewGrid(), s)

	return p.Save(8*vg.Inch, 8*vg.Inch, outPath)
}
