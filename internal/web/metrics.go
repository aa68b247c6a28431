package web

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/gadomski/atlas/internal/heartbeat"
)

// metrics serves GET /metrics in Prometheus text exposition format. Every
// gauge reflects the latest heartbeat; an empty collection exposes only the
// heartbeat count.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	families := []*dto.MetricFamily{
		gauge("atlas_heartbeats", "Number of reassembled heartbeats.",
			float64(len(h.provider.Snapshot()))),
	}
	if latest, ok := h.provider.Latest(); ok {
		families = append(families, latestFamilies(latest)...)
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	encoder := expfmt.NewEncoder(w, format)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return
		}
	}
}

func latestFamilies(latest heartbeat.Heartbeat) []*dto.MetricFamily {
	families := []*dto.MetricFamily{
		gauge("atlas_last_heartbeat_seconds",
			"Unix time of the most recent heartbeat.",
			float64(latest.StartTime.Unix())),
		gauge("atlas_external_temperature_celsius",
			"External temperature from the southern tower probe.",
			float64(latest.ExternalTemperature)),
		gauge("atlas_mount_temperature_celsius",
			"Temperature inside the scanner mount.",
			float64(latest.MountTemperature)),
		gauge("atlas_pressure_millibars",
			"Atmospheric pressure.",
			float64(latest.Pressure)),
		gauge("atlas_humidity_percent",
			"Relative humidity.",
			float64(latest.Humidity)),
		gauge("atlas_last_scan_start_seconds",
			"Unix time of the most recent scan start.",
			float64(latest.LastScan.Start.Unix())),
	}
	soc := &dto.MetricFamily{
		Name: proto.String("atlas_battery_state_of_charge_percent"),
		Help: proto.String("State of charge per battery bank."),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{
				Label: []*dto.LabelPair{
					{Name: proto.String("bank"), Value: proto.String("1")},
				},
				Gauge: &dto.Gauge{Value: proto.Float64(float64(latest.SOC1.Percentage()))},
			},
			{
				Label: []*dto.LabelPair{
					{Name: proto.String("bank"), Value: proto.String("2")},
				},
				Gauge: &dto.Gauge{Value: proto.Float64(float64(latest.SOC2.Percentage()))},
			},
		},
	}
	return append(families, soc)
}

func gauge(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: proto.Float64(value)}},
		},
	}
}
