// Package monitor serves the HTTP side of the capture daemon: a status page,
// JSON endpoints for throughput and the latest frame, a chart view, and a
// websocket feed of completed revolutions.
package monitor

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/fieldrover/scanlink/internal/capture"
	"github.com/fieldrover/scanlink/internal/db"
	"github.com/gorilla/websocket"
)

//go:embed status.html
var StatusHTML embed.FS

// WebServer handles the HTTP interface for monitoring the capture daemon.
// It provides endpoints for health checks and real-time status information.
type WebServer struct {
	address  string
	stats    *capture.Stats
	frames   *FrameHolder
	server   *http.Server
	device   string
	endpoint string
	motorPWM uint16
	db       *db.DB

	wsUpgrader websocket.Upgrader
	wsMux      sync.RWMutex
	wsClients  map[*websocket.Conn]*wsClient
}

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address  string
	Stats    *capture.Stats
	Device   string
	Endpoint string
	MotorPWM uint16
	DB       *db.DB
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:   config.Address,
		stats:     config.Stats,
		frames:    NewFrameHolder(),
		device:    config.Device,
		endpoint:  config.Endpoint,
		motorPWM:  config.MotorPWM,
		db:        config.DB,
		wsClients: make(map[*websocket.Conn]*wsClient),
	}

	ws.wsUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// The daemon listens on the capture host itself.
			return true
		},
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
func (ws *WebServer) Start(ctx context.Context) error {
	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	// Create a shutdown context with a shorter timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/scan/frame", ws.handleFrame)
	mux.HandleFunc("/api/scan/stats", ws.handleStats)
	mux.HandleFunc("/api/scan/sessions", ws.handleSessions)
	mux.HandleFunc("/scan", ws.handleScanChart)
	mux.HandleFunc("/ws", ws.handleWS)

	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

// handleHealth handles the health check endpoint
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "scanlink", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleStatus handles the main status page endpoint
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	// Load and parse the HTML template from embedded filesystem
	tmpl, err := template.ParseFS(StatusHTML, "status.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Template data
	data := struct {
		Device      string
		Endpoint    string
		MotorPWM    uint16
		HTTPAddress string
		Uptime      string
		Stats       *capture.StatsSnapshot
		Frame       *FrameSnapshot
		TotalFrames int64
	}{
		Device:      ws.device,
		Endpoint:    ws.endpoint,
		MotorPWM:    ws.motorPWM,
		HTTPAddress: ws.address,
		Uptime:      ws.stats.GetUptime().Round(time.Second).String(),
		Stats:       ws.stats.GetLatestSnapshot(),
		Frame:       ws.frames.Latest(),
		TotalFrames: ws.stats.TotalFrames(),
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleFrame returns the latest revolution as JSON: sequence number, capture
// time, the 360 bucket distances, and the per-revolution statistics.
func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap := ws.frames.Latest()
	if snap == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no revolution captured yet")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleStats returns the most recent throughput snapshot plus lifetime
// totals as JSON.
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap := ws.stats.GetLatestSnapshot()
	if snap == nil {
		snap = &capture.StatsSnapshot{Timestamp: time.Now()}
	}

	resp := struct {
		FramesPerSec  float64 `json:"frames_per_sec"`
		SamplesPerSec float64 `json:"samples_per_sec"`
		KBPerSec      float64 `json:"kb_per_sec"`
		HookErrors    int64   `json:"hook_errors"`
		Timestamp     string  `json:"timestamp"`
		TotalFrames   int64   `json:"total_frames"`
		TotalSamples  int64   `json:"total_samples"`
		Uptime        string  `json:"uptime"`
	}{
		FramesPerSec:  snap.FramesPerSec,
		SamplesPerSec: snap.SamplesPerSec,
		KBPerSec:      snap.KBPerSec,
		HookErrors:    snap.HookErrors,
		Timestamp:     snap.Timestamp.Format(time.RFC3339Nano),
		TotalFrames:   ws.stats.TotalFrames(),
		TotalSamples:  ws.stats.TotalSamples(),
		Uptime:        ws.stats.GetUptime().Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleSessions returns a JSON array of recent capture sessions.
// Query params:
//
//	limit (optional, default 20)
func (ws *WebServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no database configured for session lookup")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
	}

	sessions, err := ws.db.ListSessions(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// Close shuts down the web server
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
