package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privacymirror/internal/analysis"
	"privacymirror/internal/config"
	"privacymirror/internal/geo"
	"privacymirror/internal/metrics"
	"privacymirror/internal/types"
	"privacymirror/internal/whoami"
)

type panickingGeo struct{}

func (panickingGeo) Lookup(netip.Addr) (geo.Location, error) {
	panic("mmdb reader closed")
}

func (panickingGeo) Close() error { return nil }

func newTestHandlers(g geo.Resolver) *Handlers {
	cfg := config.DefaultConfig()
	res := &whoami.Resolver{Geo: g, RemoteAddrFallback: true, Logger: zerolog.Nop()}
	return New(cfg, zerolog.Nop(), metrics.NewManager(), res, analysis.New(), nil)
}

func TestWhoAmIInternalFailureIsJSON500(t *testing.T) {
	h := newTestHandlers(panickingGeo{})

	r := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	w := httptest.NewRecorder()
	h.WhoAmI(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "mmdb reader closed", body["error"])
}

func TestWhoAmIOK(t *testing.T) {
	h := newTestHandlers(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	w := httptest.NewRecorder()
	h.WhoAmI(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "198.51.100.1", body["ip"])
	assert.Equal(t, "unknown", body["method"])
}

func TestDecodeReportRejectsTrailingData(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"single object", `{"userAgent":"x"}`, false},
		{"trailing whitespace", "{\"userAgent\":\"x\"}\n  ", false},
		{"trailing garbage", `{"userAgent":"x"} this is not json`, true},
		{"second object", `{"userAgent":"x"}{}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeReport(strings.NewReader(tt.body), new(types.ClientReport))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
