package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gadomski/atlas/internal/cam"
	"github.com/gadomski/atlas/internal/heartbeat"
	"github.com/gadomski/atlas/internal/units"
)

// fakeProvider serves a fixed heartbeat slice.
type fakeProvider struct {
	heartbeats []heartbeat.Heartbeat
}

func (f *fakeProvider) Snapshot() []heartbeat.Heartbeat { return f.heartbeats }

func (f *fakeProvider) Latest() (heartbeat.Heartbeat, bool) {
	if len(f.heartbeats) == 0 {
		return heartbeat.Heartbeat{}, false
	}
	return f.heartbeats[len(f.heartbeats)-1], true
}

func testHeartbeat(start time.Time) heartbeat.Heartbeat {
	return heartbeat.Heartbeat{
		StartTime:           start,
		ExternalTemperature: units.Celsius(9.915),
		MountTemperature:    units.Celsius(12.4),
		Pressure:            units.Millibar(942.240),
		Humidity:            units.Percentage(40.932),
		SOC1:                units.OrionPercentage(4.0),
		SOC2:                units.OrionPercentage(4.5),
		LastScan: heartbeat.Scan{
			Start: start.Add(-6 * time.Hour),
		},
	}
}

func newTestHandler(heartbeats ...heartbeat.Heartbeat) http.Handler {
	return New(&fakeProvider{heartbeats: heartbeats}, nil, "", nil)
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.HeartbeatCount != 1 {
		t.Errorf("heartbeat_count: got %d, want 1", resp.HeartbeatCount)
	}
	if resp.LastHeartbeat != "2016-08-16T18:01:58Z" {
		t.Errorf("last_heartbeat: got %q", resp.LastHeartbeat)
	}
}

func TestHealth_Empty(t *testing.T) {
	rec := get(t, newTestHandler(), "/api/v1/health")
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.HeartbeatCount != 0 {
		t.Errorf("heartbeat_count: got %d, want 0", resp.HeartbeatCount)
	}
	if resp.LastHeartbeat != "" {
		t.Errorf("last_heartbeat: got %q, want empty", resp.LastHeartbeat)
	}
}

func TestListHeartbeats(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	handler := newTestHandler(testHeartbeat(start), testHeartbeat(start.Add(6*time.Hour)))
	rec := get(t, handler, "/api/v1/heartbeats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp []HeartbeatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d heartbeats, want 2", len(resp))
	}
	if resp[0].SOC1 != 80 {
		t.Errorf("soc1 should be a plain percentage: %v", resp[0].SOC1)
	}
	if resp[0].ScannerOn != nil {
		t.Error("scanner_on should be omitted for format-1 heartbeats")
	}
}

func TestLatestHeartbeat(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/api/v1/heartbeats/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp HeartbeatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.StartTime != "2016-08-16T18:01:58Z" {
		t.Errorf("start_time: got %q", resp.StartTime)
	}
	if resp.NextScanStart != "2016-08-16T18:00:00Z" {
		t.Errorf("next_scan_start: got %q", resp.NextScanStart)
	}
}

func TestLatestHeartbeat_Empty(t *testing.T) {
	rec := get(t, newTestHandler(), "/api/v1/heartbeats/latest")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestListHeartbeats_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/heartbeats", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}

func TestSOCCSV(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/soc.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("content type: got %q", got)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "Datetime,Battery #1,Battery #2" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "2016-08-16T18:01:58Z,80.0,90.0" {
		t.Errorf("row: got %q", lines[1])
	}
}

func TestTemperatureCSV(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/temperature.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "Datetime,External,Mount" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "2016-08-16T18:01:58Z,9.9,12.4" {
		t.Errorf("row: got %q", lines[1])
	}
}

func TestMetrics(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"atlas_heartbeats 1",
		"atlas_external_temperature_celsius 9.915",
		`atlas_battery_state_of_charge_percent{bank="1"} 80`,
		`atlas_battery_state_of_charge_percent{bank="2"} 90`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestMetrics_Empty(t *testing.T) {
	rec := get(t, newTestHandler(), "/metrics")
	body := rec.Body.String()
	if !strings.Contains(body, "atlas_heartbeats 0") {
		t.Errorf("metrics output missing heartbeat count:\n%s", body)
	}
	if strings.Contains(body, "atlas_external_temperature_celsius") {
		t.Error("empty collection should not expose heartbeat gauges")
	}
}

func TestIndex(t *testing.T) {
	start := time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)
	rec := get(t, newTestHandler(testHeartbeat(start)), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"2016-08-16T18:01:58Z",
		"9.9°C",
		"942.2 mbar",
		"80.0%",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndex_NoHeartbeats(t *testing.T) {
	rec := get(t, newTestHandler(), "/")
	if !strings.Contains(rec.Body.String(), "No heartbeats available") {
		t.Error("index should report an empty collection")
	}
}

func TestIndex_Images(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(
		filepath.Join(dir, "ATLAS_CAM_20160725_141500.jpg"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	imgURL, err := url.Parse("http://iridiumcam.lidar.io")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	camera := cam.NewNamed("ATLAS_CAM", dir)
	handler := New(&fakeProvider{}, []*cam.Camera{camera}, "ATLAS_CAM", imgURL)

	body := get(t, handler, "/").Body.String()
	if !strings.Contains(body,
		"http://iridiumcam.lidar.io/ATLAS_CAM/ATLAS_CAM_20160725_141500.jpg") {
		t.Errorf("index missing image url:\n%s", body)
	}
}

func TestIndex_NotFound(t *testing.T) {
	rec := get(t, newTestHandler(), "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
