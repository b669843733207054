package handlers

import (
	"net/http"
	"time"
)

// HealthResponse defines the health-check response payload
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	GeoIP   bool   `json:"geoip"`
}

// Health returns service health and uptime
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.Cfg.BuildVersion,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		GeoIP:   h.Resolver.Geo != nil,
	})
}
