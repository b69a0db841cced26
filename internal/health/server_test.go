package health

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testServer() *Server {
	return New(0, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestServer_handleHealth(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
}

func TestServer_handleReady_BeforeFirstCycle(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != StatusNotReady {
		t.Errorf("expected status %q, got %q", StatusNotReady, resp.Status)
	}
}

func TestServer_handleReady_AfterCleanCycle(t *testing.T) {
	s := testServer()
	s.ReportCycle(CycleSummary{Updated: 2, Skipped: 1})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != StatusReady {
		t.Errorf("expected status %q, got %q", StatusReady, resp.Status)
	}
	if resp.LastCycle == nil || resp.LastCycle.Updated != 2 {
		t.Errorf("expected last cycle with 2 updates, got %+v", resp.LastCycle)
	}
	if resp.LastRun == "" {
		t.Error("expected last_run to be set")
	}
}

func TestServer_handleReady_DegradedAfterFailures(t *testing.T) {
	s := testServer()
	s.ReportCycle(CycleSummary{Updated: 1, Failed: 1})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != StatusDegraded {
		t.Errorf("expected status %q, got %q", StatusDegraded, resp.Status)
	}
}

func TestServer_handleReady_RecoversAfterCleanCycle(t *testing.T) {
	s := testServer()
	s.ReportCycle(CycleSummary{Failed: 3})
	s.ReportCycle(CycleSummary{Updated: 3})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != StatusReady {
		t.Errorf("expected status %q after recovery, got %q", StatusReady, resp.Status)
	}
}

func TestServer_metricsRoute(t *testing.T) {
	s := testServer()

	srv := httptest.NewServer(s.mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}
