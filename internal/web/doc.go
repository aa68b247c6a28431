// Package web serves the station status site: an HTML index page, a JSON
// API under /api/v1, the CSV endpoints the plotting scripts read, and a
// Prometheus-format /metrics endpoint.
package web
