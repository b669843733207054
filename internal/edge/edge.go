// Package edge carries the request-context object an edge runtime attaches
// to a request (Cloudflare's request.cf) into the Go request context.
package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Context mirrors the subset of Cloudflare's request.cf the mirror reports.
type Context struct {
	Country        string      `json:"country"`
	City           string      `json:"city"`
	Region         string      `json:"region"`
	RegionCode     string      `json:"regionCode"`
	ASN            json.Number `json:"asn"`
	ASOrganization string      `json:"asOrganization"`
}

// HasGeo reports whether the object carries anything worth answering with.
func (c *Context) HasGeo() bool {
	if c == nil {
		return false
	}
	return c.Country != "" || c.ASOrganization != "" || (c.ASN != "" && c.ASN != "0")
}

type contextKey string

const edgeContextKey contextKey = "edge"

func NewContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, edgeContextKey, c)
}

func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(edgeContextKey).(*Context)
	return c, ok && c != nil
}

// Extractor builds a Context from request headers. Both sources are
// client-controlled unless an edge in front of the server overwrites them,
// so each must be switched on explicitly.
type Extractor struct {
	ContextHeader          string
	TrustContextHeader     bool
	TrustCloudflareHeaders bool
}

// Extract returns nil when no trusted source yields a value. A malformed
// context header is reported as an error and otherwise ignored.
func (e Extractor) Extract(r *http.Request) (*Context, error) {
	if e.TrustContextHeader && e.ContextHeader != "" {
		if raw := r.Header.Get(e.ContextHeader); raw != "" {
			var c Context
			if err := json.Unmarshal([]byte(raw), &c); err != nil {
				return e.fromCloudflare(r), err
			}
			return &c, nil
		}
	}
	return e.fromCloudflare(r), nil
}

func (e Extractor) fromCloudflare(r *http.Request) *Context {
	if !e.TrustCloudflareHeaders {
		return nil
	}
	country := strings.TrimSpace(r.Header.Get("CF-IPCountry"))
	if strings.EqualFold(country, "XX") {
		country = ""
	}
	c := &Context{
		Country:    country,
		City:       strings.TrimSpace(r.Header.Get("CF-IPCity")),
		Region:     strings.TrimSpace(r.Header.Get("CF-Region")),
		RegionCode: strings.TrimSpace(r.Header.Get("CF-Region-Code")),
	}
	if *c == (Context{}) {
		return nil
	}
	return c
}
