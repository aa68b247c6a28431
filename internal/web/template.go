package web

import (
	"html/template"
	"log/slog"
	"time"

	"github.com/gadomski/atlas/internal/heartbeat"
)

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// indexData is the template context for the status page.
type indexData struct {
	HasHeartbeat        bool
	LastHeartbeat       string
	LastScanStart       string
	NextScanStart       string
	ExternalTemperature string
	MountTemperature    string
	Pressure            string
	Humidity            string
	SOC1                string
	SOC2                string
	Images              []indexImage
	Now                 string
}

// indexImage is one camera's latest capture.
type indexImage struct {
	Name     string
	URL      string
	Datetime string
	Active   bool
}

func (h *Handler) indexData() indexData {
	data := indexData{
		Now: time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
	}
	if latest, ok := h.provider.Latest(); ok {
		data.HasHeartbeat = true
		data.LastHeartbeat = latest.StartTime.UTC().Format(time.RFC3339)
		data.LastScanStart = latest.LastScan.Start.UTC().Format(time.RFC3339)
		data.NextScanStart = heartbeat.ExpectedNextScanTime(latest.LastScan.Start).
			Format(time.RFC3339)
		data.ExternalTemperature = latest.ExternalTemperature.String()
		data.MountTemperature = latest.MountTemperature.String()
		data.Pressure = latest.Pressure.String()
		data.Humidity = latest.Humidity.String()
		data.SOC1 = latest.SOC1.String()
		data.SOC2 = latest.SOC2.String()
	}
	for _, camera := range h.cameras {
		image, ok, err := camera.Latest()
		if err != nil {
			slog.Warn("web: latest image", "camera", camera.Name(), "err", err)
			continue
		}
		if !ok || h.imgURL == nil {
			continue
		}
		data.Images = append(data.Images, indexImage{
			Name:     camera.Name(),
			URL:      camera.URL(h.imgURL, image.Filename).String(),
			Datetime: image.Datetime.Format(time.RFC3339),
			Active:   camera.Name() == h.activeCamera,
		})
	}
	return data
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>ATLAS status</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
img { max-width: 100%; }
.active { border: 2px solid green; }
.missing { color: orange; }
footer { color: #888; margin-top: 2em; }
</style>
</head>
<body>
<h1>ATLAS status</h1>
{{if .HasHeartbeat}}
<table>
<tr><th>Last heartbeat</th><td>{{.LastHeartbeat}}</td></tr>
<tr><th>Last scan start</th><td>{{.LastScanStart}}</td></tr>
<tr><th>Next scan start</th><td>{{.NextScanStart}}</td></tr>
<tr><th>External temperature</th><td>{{.ExternalTemperature}}</td></tr>
<tr><th>Mount temperature</th><td>{{.MountTemperature}}</td></tr>
<tr><th>Pressure</th><td>{{.Pressure}}</td></tr>
<tr><th>Humidity</th><td>{{.Humidity}}</td></tr>
<tr><th>Battery #1</th><td>{{.SOC1}}</td></tr>
<tr><th>Battery #2</th><td>{{.SOC2}}</td></tr>
</table>
{{else}}
<p class="missing">No heartbeats available.</p>
{{end}}
{{range .Images}}
<figure>
<img src="{{.URL}}" alt="{{.Name}}" {{if .Active}}class="active"{{end}}>
<figcaption>{{.Name}} at {{.Datetime}}</figcaption>
</figure>
{{end}}
<footer>Generated {{.Now}}</footer>
</body>
</html>
`
