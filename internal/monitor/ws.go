package monitor

import (
	"net/http"
	"sync"

	"github.com/fieldrover/scanlink/internal/monitoring"
	"github.com/fieldrover/scanlink/internal/scan"
	"github.com/gorilla/websocket"
)

// wsClient pairs a websocket connection with a write mutex so the broadcast
// path and the handshake path never interleave writes on the same socket.
type wsClient struct {
	conn     *websocket.Conn
	writeMux sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()
	return c.conn.WriteJSON(v)
}

// handleWS upgrades the connection and streams one JSON frame snapshot per
// revolution until the client goes away.
func (ws *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("[monitor] websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn}

	ws.wsMux.Lock()
	ws.wsClients[conn] = client
	ws.wsMux.Unlock()

	monitoring.Logf("[monitor] websocket client connected from %s", conn.RemoteAddr())

	// Seed the client with the latest frame so a fresh page has something
	// to draw before the next revolution completes.
	if snap := ws.frames.Latest(); snap != nil {
		if err := client.writeJSON(snap); err != nil {
			monitoring.Debugf("[monitor] websocket seed write failed: %v", err)
		}
	}

	defer func() {
		ws.wsMux.Lock()
		delete(ws.wsClients, conn)
		ws.wsMux.Unlock()
		conn.Close()
		monitoring.Logf("[monitor] websocket client disconnected")
	}()

	// Clients never send anything useful; the read loop only notices pings
	// and closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcastFrame pushes a snapshot to every connected websocket client. Write
// errors are left for the client's own read loop to clean up.
func (ws *WebServer) broadcastFrame(snap *FrameSnapshot) {
	ws.wsMux.RLock()
	defer ws.wsMux.RUnlock()

	for _, client := range ws.wsClients {
		if err := client.writeJSON(snap); err != nil {
			monitoring.Debugf("[monitor] websocket write failed: %v", err)
		}
	}
}

// Name identifies the web server when it is registered as a revolution hook.
func (ws *WebServer) Name() string { return "monitor" }

// OnRevolution stores the newest frame and fans it out to websocket clients.
func (ws *WebServer) OnRevolution(rev scan.Revolution, frame []byte) error {
	snap, err := ws.frames.Update(rev, frame)
	if err != nil {
		return err
	}
	ws.broadcastFrame(snap)
	return nil
}
