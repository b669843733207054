package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"privacymirror/internal/analysis"
	"privacymirror/internal/config"
	"privacymirror/internal/metrics"
	"privacymirror/internal/page"
	"privacymirror/internal/whoami"
)

// Handlers holds everything the HTTP endpoints need.
type Handlers struct {
	Cfg      *config.MirrorConfig
	Logger   zerolog.Logger
	Metrics  *metrics.Manager
	Resolver *whoami.Resolver
	Analyzer *analysis.Analyzer
	Page     *page.Renderer

	started time.Time
}

func New(cfg *config.MirrorConfig, logger zerolog.Logger, m *metrics.Manager, res *whoami.Resolver, a *analysis.Analyzer, p *page.Renderer) *Handlers {
	return &Handlers{
		Cfg:      cfg,
		Logger:   logger,
		Metrics:  m,
		Resolver: res,
		Analyzer: a,
		Page:     p,
		started:  time.Now(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before touching the response so an encoding failure
// can still become a 500.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.Logger.Error().Err(err).Msg("encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
