package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gadomski/atlas/internal/heartbeat"
)

// csvColumns describes one fixed CSV endpoint: the column names and how to
// extract them from a heartbeat.
type csvColumns interface {
	header() []string
	fields(h heartbeat.Heartbeat) []string
}

// csvHandler streams every heartbeat as one CSV row, oldest first, with a
// leading Datetime column.
type csvHandler struct {
	heartbeats Provider
	columns    csvColumns
}

func (c csvHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/csv")

	writer := csv.NewWriter(w)
	writer.Write(append([]string{"Datetime"}, c.columns.header()...)) //nolint:errcheck
	for _, h := range c.heartbeats.Snapshot() {
		row := append([]string{h.StartTime.UTC().Format(time.RFC3339)},
			c.columns.fields(h)...)
		writer.Write(row) //nolint:errcheck
	}
	writer.Flush()
}

// socColumns provides state-of-charge data for the two battery banks.
type socColumns struct{}

func (socColumns) header() []string {
	return []string{"Battery #1", "Battery #2"}
}

func (socColumns) fields(h heartbeat.Heartbeat) []string {
	return []string{
		fmt.Sprintf("%.1f", float64(h.SOC1.Percentage())),
		fmt.Sprintf("%.1f", float64(h.SOC2.Percentage())),
	}
}

// temperatureColumns provides the external and mount temperatures.
type temperatureColumns struct{}

func (temperatureColumns) header() []string {
	return []string{"External", "Mount"}
}

func (temperatureColumns) fields(h heartbeat.Heartbeat) []string {
	return []string{
		fmt.Sprintf("%.1f", float64(h.ExternalTemperature)),
		fmt.Sprintf("%.1f", float64(h.MountTemperature)),
	}
}
