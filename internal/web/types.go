package web

import (
	"time"

	"github.com/gadomski/atlas/internal/heartbeat"
)

// Provider supplies the current heartbeat batch. *heartbeat.Watcher is the
// production implementation.
type Provider interface {
	// Snapshot returns the current heartbeats, sorted ascending by start
	// time.
	Snapshot() []heartbeat.Heartbeat

	// Latest returns the most recent heartbeat, or false if there is none.
	Latest() (heartbeat.Heartbeat, bool)
}

// HeartbeatResponse is one heartbeat in the JSON API. Orion readings are
// converted to plain percentages; optional sub-records are omitted when the
// wire format did not carry them.
type HeartbeatResponse struct {
	StartTime           string  `json:"start_time"` // RFC3339
	ExternalTemperature float64 `json:"external_temperature"`
	MountTemperature    float64 `json:"mount_temperature"`
	Pressure            float64 `json:"pressure"`
	Humidity            float64 `json:"humidity"`
	SOC1                float64 `json:"soc1"`
	SOC2                float64 `json:"soc2"`

	LastScanStart string `json:"last_scan_start"`
	LastScanEnd   string `json:"last_scan_end,omitempty"`
	NextScanStart string `json:"next_scan_start"`

	ScannerOn *ScannerOnResponse `json:"scanner_on,omitempty"`
	ScanSkip  *ScanSkipResponse  `json:"scan_skip,omitempty"`
	Efoy1     *EfoyResponse      `json:"efoy1,omitempty"`
	Efoy2     *EfoyResponse      `json:"efoy2,omitempty"`
}

// ScannerOnResponse is the last scanner power-on event.
type ScannerOnResponse struct {
	Datetime           string  `json:"datetime"`
	ScannerVoltage     float64 `json:"scanner_voltage"`
	ScannerTemperature float64 `json:"scanner_temperature"`
	MemoryExternal     float64 `json:"memory_external_kb"`
	MemoryInternal     float64 `json:"memory_internal_kb"`
}

// ScanSkipResponse is the last scan the scanner decided not to run.
type ScanSkipResponse struct {
	Datetime    string `json:"datetime"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// EfoyResponse is the last action of one EFOY fuel cell.
type EfoyResponse struct {
	Datetime string `json:"datetime"`
	Action   string `json:"action"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	HeartbeatCount int    `json:"heartbeat_count"`
	LastHeartbeat  string `json:"last_heartbeat,omitempty"` // RFC3339
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// ToHeartbeatResponse converts a heartbeat into its API shape. The
// WebSocket hub shares this shape for its broadcasts.
func ToHeartbeatResponse(h heartbeat.Heartbeat) HeartbeatResponse {
	resp := HeartbeatResponse{
		StartTime:           h.StartTime.UTC().Format(time.RFC3339),
		ExternalTemperature: float64(h.ExternalTemperature),
		MountTemperature:    float64(h.MountTemperature),
		Pressure:            float64(h.Pressure),
		Humidity:            float64(h.Humidity),
		SOC1:                float64(h.SOC1.Percentage()),
		SOC2:                float64(h.SOC2.Percentage()),
		LastScanStart:       h.LastScan.Start.UTC().Format(time.RFC3339),
		NextScanStart: heartbeat.ExpectedNextScanTime(h.LastScan.Start).
			Format(time.RFC3339),
	}
	if h.LastScan.End != nil {
		resp.LastScanEnd = h.LastScan.End.UTC().Format(time.RFC3339)
	}
	if on := h.LastScannerOn; on != nil {
		resp.ScannerOn = &ScannerOnResponse{
			Datetime:           on.Datetime.UTC().Format(time.RFC3339),
			ScannerVoltage:     float64(on.ScannerVoltage),
			ScannerTemperature: float64(on.ScannerTemperature),
			MemoryExternal:     float64(on.MemoryExternal),
			MemoryInternal:     float64(on.MemoryInternal),
		}
	}
	if skip := h.LastScanSkip; skip != nil {
		resp.ScanSkip = &ScanSkipResponse{
			Datetime:    skip.Datetime.UTC().Format(time.RFC3339),
			Reason:      skip.Reason.String(),
			Description: skip.Description,
		}
	}
	if efoy := h.LastEfoy1Action; efoy != nil {
		resp.Efoy1 = &EfoyResponse{
			Datetime: efoy.Datetime.UTC().Format(time.RFC3339),
			Action:   efoy.Kind.String(),
		}
	}
	if efoy := h.LastEfoy2Action; efoy != nil {
		resp.Efoy2 = &EfoyResponse{
			Datetime: efoy.Datetime.UTC().Format(time.RFC3339),
			Action:   efoy.Kind.String(),
		}
	}
	return resp
}
