package hittest

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/spatial/pkg/interval"
)

// DebugServer exposes the index over HTTP for inspection during
// development: /stats, /widgets, /query, and /health, all JSON.
//
// Locking contract: the System itself is single-threaded, so the server
// takes a caller-supplied sync.Locker and holds it for the duration of
// each read. The caller must hold the same locker around its own frame
// mutations; handlers then only ever observe the index between frames.
type DebugServer struct {
	system *System
	frames sync.Locker

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// widgetInfo is the serialized form of one indexed widget.
type widgetInfo struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	ZIndex int     `json:"zIndex"`
	Seq    uint64  `json:"seq"`
}

// NewDebugServer wraps the system for HTTP inspection. The frames locker
// guards all access to the system; pass the mutex the caller already uses
// around its frame loop.
func NewDebugServer(system *System, frames sync.Locker) *DebugServer {
	return &DebugServer{system: system, frames: frames}
}

// Start listens on the given port (0 picks an ephemeral port) and serves
// in a background goroutine. Returns the actual port.
func (d *DebugServer) Start(port int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.server != nil {
		if d.listener != nil {
			return d.listener.Addr().(*net.TCPAddr).Port, nil
		}
		return port, nil
	}

	// Bind the listener first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: d.Handler()}
	d.server = server
	d.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			d.mu.Lock()
			d.server = nil
			d.listener = nil
			d.mu.Unlock()
		}
	}()

	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop gracefully shuts down the server.
func (d *DebugServer) Stop() {
	d.mu.Lock()
	server := d.server
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// Handler returns the debug endpoints as an http.Handler, for embedding in
// an existing mux instead of a standalone server.
func (d *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", d.handleStats)
	mux.HandleFunc("/widgets", d.handleWidgets)
	mux.HandleFunc("/query", d.handleQuery)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

// handleStats returns the current StatsSnapshot as JSON.
func (d *DebugServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d.frames.Lock()
	snap := d.system.StatsSnapshot()
	d.frames.Unlock()

	writeJSON(w, snap)
}

// handleWidgets returns every indexed widget's bounds, z-index, and
// insertion sequence, in x-tree order.
func (d *DebugServer) handleWidgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d.frames.Lock()
	infos := make([]widgetInfo, 0, d.system.Len())
	d.system.xTree.Visit(func(iv interval.Interval[Widget]) bool {
		infos = append(infos, d.describe(iv.Payload))
		return true
	})
	d.frames.Unlock()

	writeJSON(w, struct {
		Widgets []widgetInfo `json:"widgets"`
	}{Widgets: infos})
}

// handleQuery runs a point query: /query?x=120&y=48.
func (d *DebugServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y query parameters are required numbers", http.StatusBadRequest)
		return
	}

	d.frames.Lock()
	hits := d.system.WidgetsAt(x, y)
	infos := make([]widgetInfo, 0, len(hits))
	for _, hit := range hits {
		infos = append(infos, d.describe(hit))
	}
	d.frames.Unlock()

	writeJSON(w, struct {
		X    float64      `json:"x"`
		Y    float64      `json:"y"`
		Hits []widgetInfo `json:"hits"`
	}{X: x, Y: y, Hits: infos})
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (d *DebugServer) describe(widget Widget) widgetInfo {
	r := widget.HitRect()
	return widgetInfo{
		Left:   r.Left,
		Top:    r.Top,
		Right:  r.Right,
		Bottom: r.Bottom,
		ZIndex: widget.ZIndex(),
		Seq:    d.system.seq[widget],
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
