package edge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContextHeader(t *testing.T) {
	e := Extractor{ContextHeader: "X-Edge-Context", TrustContextHeader: true}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Edge-Context", `{"country":"NL","city":"Amsterdam","regionCode":"NH","asn":13335,"asOrganization":"Cloudflare"}`)

	c, err := e.Extract(r)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "NL", c.Country)
	assert.Equal(t, "Amsterdam", c.City)
	assert.Equal(t, "NH", c.RegionCode)
	assert.Equal(t, "13335", c.ASN.String())
	assert.Equal(t, "Cloudflare", c.ASOrganization)
	assert.True(t, c.HasGeo())
}

func TestExtractIgnoresUntrustedContextHeader(t *testing.T) {
	e := Extractor{ContextHeader: "X-Edge-Context"}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Edge-Context", `{"country":"NL"}`)

	c, err := e.Extract(r)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestExtractMalformedContextHeader(t *testing.T) {
	e := Extractor{ContextHeader: "X-Edge-Context", TrustContextHeader: true, TrustCloudflareHeaders: true}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Edge-Context", `{"country":`)
	r.Header.Set("CF-IPCountry", "FR")

	c, err := e.Extract(r)
	assert.Error(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "FR", c.Country)
}

func TestExtractCloudflareHeaders(t *testing.T) {
	e := Extractor{TrustCloudflareHeaders: true}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	c, err := e.Extract(r)
	require.NoError(t, err)
	assert.Nil(t, c)

	r.Header.Set("CF-IPCountry", "XX")
	c, _ = e.Extract(r)
	assert.Nil(t, c, "XX means unknown")

	r.Header.Set("CF-IPCountry", "JP")
	r.Header.Set("CF-IPCity", "Tokyo")
	r.Header.Set("CF-Region", "Tokyo")
	r.Header.Set("CF-Region-Code", "13")
	c, err = e.Extract(r)
	require.NoError(t, err)
	assert.Equal(t, &Context{Country: "JP", City: "Tokyo", Region: "Tokyo", RegionCode: "13"}, c)
}

func TestHasGeo(t *testing.T) {
	var nilCtx *Context
	assert.False(t, nilCtx.HasGeo())
	assert.False(t, (&Context{City: "Oslo"}).HasGeo())
	assert.False(t, (&Context{ASN: "0"}).HasGeo())
	assert.True(t, (&Context{ASN: "64500"}).HasGeo())
	assert.True(t, (&Context{ASOrganization: "Example"}).HasGeo())
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := &Context{Country: "US"}
	got, ok := FromContext(NewContext(context.Background(), want))
	require.True(t, ok)
	assert.Same(t, want, got)
}
