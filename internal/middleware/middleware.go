package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"privacymirror/internal/config"
	"privacymirror/internal/edge"
	"privacymirror/internal/metrics"
	"privacymirror/internal/utils"
)

type Middleware struct {
	Cfg     *config.MirrorConfig
	Logger  zerolog.Logger
	Metrics *metrics.Manager
	edge    edge.Extractor
}

func New(cfg *config.MirrorConfig, logger zerolog.Logger, m *metrics.Manager) *Middleware {
	return &Middleware{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: m,
		edge: edge.Extractor{
			ContextHeader:          cfg.Edge.ContextHeader,
			TrustContextHeader:     cfg.Edge.TrustContextHeader,
			TrustCloudflareHeaders: cfg.Edge.TrustCloudflareHeaders,
		},
	}
}

// EdgeContext attaches the edge request-context object, when one can be
// trusted, to the request context.
func (m *Middleware) EdgeContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := m.edge.Extract(r)
		if err != nil {
			m.Logger.Warn().Err(err).Str("header", m.edge.ContextHeader).Msg("ignoring malformed edge context")
		}
		if c != nil {
			r = r.WithContext(edge.NewContext(r.Context(), c))
		}
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one line per request and feeds the request metrics.
func (m *Middleware) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.Metrics.ObserveRequest(route, status, elapsed)

		ip := utils.ClientIP(r, m.Cfg.RemoteAddrFallback)
		if m.Cfg.MaskLoggedIPs {
			ip = utils.MaskIP(ip)
		}
		evt := m.Logger.Info()
		if status >= http.StatusInternalServerError {
			evt = m.Logger.Error()
		}
		evt.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Str("ip", ip).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}
