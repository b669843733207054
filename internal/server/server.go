// Package server wires the mirror's routes and middleware together.
package server

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"privacymirror/internal/handlers"
	"privacymirror/internal/middleware"
	"privacymirror/internal/page"
)

var compressibleTypes = []string{
	"text/html",
	"text/css",
	"text/javascript",
	"application/javascript",
	"application/json",
}

func NewRouter(h *handlers.Handlers, m *middleware.Middleware) http.Handler {
	compressor := chimw.NewCompressor(h.Cfg.CompressionLevel, compressibleTypes...)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(m.AccessLog)
	router.Use(chimw.Recoverer)
	router.Use(m.EdgeContext)

	router.Get("/health", h.Health)
	if h.Cfg.Metrics.Enabled {
		router.Method(http.MethodGet, h.Cfg.Metrics.Path, h.Metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(compressor.Handler)
		r.Get("/", h.Index)
		r.Handle("/static/*", http.StripPrefix("/static/", page.Static()))
		r.Get("/api/whoami", h.WhoAmI)
		r.Post("/api/report", h.Report)
	})
	return router
}
