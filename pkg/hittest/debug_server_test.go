package hittest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newTestServer(t *testing.T) (*System, *httptest.Server) {
	t.Helper()
	system := NewSystem()
	mustInsert(t, system, newWidget("a", 0, 0, 100, 100, 1))
	mustInsert(t, system, newWidget("b", 50, 50, 100, 100, 2))

	var frames sync.Mutex
	ts := httptest.NewServer(NewDebugServer(system, &frames).Handler())
	t.Cleanup(ts.Close)
	return system, ts
}

func TestDebugServerStats(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var snap StatsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Count != 2 || !snap.OK {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestDebugServerWidgets(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/widgets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Widgets []widgetInfo `json:"widgets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Widgets) != 2 {
		t.Fatalf("got %d widgets, want 2", len(body.Widgets))
	}
	// x-tree order: widget a starts at 0, b at 50.
	if body.Widgets[0].Left != 0 || body.Widgets[1].Left != 50 {
		t.Errorf("widgets not in x order: %+v", body.Widgets)
	}
}

func TestDebugServerQuery(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/query?x=75&y=75")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		X    float64      `json:"x"`
		Y    float64      `json:"y"`
		Hits []widgetInfo `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(body.Hits))
	}
	// Topmost first: b has z=2.
	if body.Hits[0].ZIndex != 2 || body.Hits[1].ZIndex != 1 {
		t.Errorf("hits not in paint order: %+v", body.Hits)
	}

	// Missing coordinates are a client error.
	bad, err := http.Get(ts.URL + "/query?x=75")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("missing y: status = %d, want 400", bad.StatusCode)
	}
}

func TestDebugServerHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
}

func TestDebugServerMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/stats", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /stats status = %d, want 405", resp.StatusCode)
	}
}

func TestDebugServerStartStop(t *testing.T) {
	system := NewSystem()
	var frames sync.Mutex
	server := NewDebugServer(system, &frames)

	port, err := server.Start(0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if port == 0 {
		t.Error("ephemeral port not reported")
	}

	// Starting again returns the same port instead of rebinding.
	again, err := server.Start(0)
	if err != nil || again != port {
		t.Errorf("second Start = %d, %v; want %d", again, err, port)
	}

	server.Stop()
	// Stop is idempotent.
	server.Stop()
}
