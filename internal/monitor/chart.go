package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsAssetsPrefix is where chart pages load the echarts bundle from, so
// the daemon does not have to ship its own copy.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleScanChart renders the latest revolution as an XY scatter (HTML) using
// go-echarts. Each bucket is projected from polar coordinates; buckets without
// a return are skipped.
func (ws *WebServer) handleScanChart(w http.ResponseWriter, r *http.Request) {
	snap := ws.frames.Latest()
	if snap == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no revolution captured yet")
		return
	}

	data := make([]opts.ScatterData, 0, len(snap.Distances))
	maxAbs := 0.0
	maxDist := float64(0)
	for deg, dist := range snap.Distances {
		if dist <= 0 {
			continue
		}
		theta := float64(deg) * math.Pi / 180.0
		x := float64(dist) * math.Cos(theta)
		y := float64(dist) * math.Sin(theta)
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		if float64(dist) > maxDist {
			maxDist = float64(dist)
		}

		data = append(data, opts.ScatterData{Value: []interface{}{x, y, float64(dist)}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	if maxDist == 0 {
		maxDist = 1
	}

	// Force a square plot by using equal width/height and symmetric axis ranges
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scanlink Revolution (Polar->XY)", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Latest Revolution", Subtitle: fmt.Sprintf("seq=%d points=%d captured=%s", snap.Seq, len(data), snap.CapturedAt.Format(time.RFC3339))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDist),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("revolution", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
