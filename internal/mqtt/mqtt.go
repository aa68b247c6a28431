package mqtt

import (
	"encoding/json"
	"time"

	"github.com/gadomski/atlas/internal/heartbeat"
)

// Publisher publishes heartbeats to MQTT.
type Publisher interface {
	// Publish sends a heartbeat to the broker. Returns an error if
	// publishing fails; a failed publish should never crash the process.
	Publish(h heartbeat.Heartbeat) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the MQTT message payload structure.
type Payload struct {
	Heartbeat HeartbeatPayload `json:"heartbeat"`
}

// HeartbeatPayload carries the fields subscribers care about. Raw Orion
// readings are converted to plain percentages before they leave the process.
type HeartbeatPayload struct {
	StartTime           string  `json:"start_time"`
	ExternalTemperature float64 `json:"external_temperature"`
	MountTemperature    float64 `json:"mount_temperature"`
	Pressure            float64 `json:"pressure"`
	Humidity            float64 `json:"humidity"`
	SOC1                float64 `json:"soc1"`
	SOC2                float64 `json:"soc2"`
	LastScanStart       string  `json:"last_scan_start"`
	NextScanStart       string  `json:"next_scan_start"`
}

// FormatPayload creates the JSON payload for a heartbeat.
func FormatPayload(h heartbeat.Heartbeat) ([]byte, error) {
	payload := Payload{
		Heartbeat: HeartbeatPayload{
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
		},
	}
	return json.Marshal(payload)
}
