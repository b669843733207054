package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardedIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, ""},
		{"xff single", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"xff chain", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"cf only", map[string]string{"CF-Connecting-IP": "2001:db8::1"}, "2001:db8::1"},
		{"xff wins over cf", map[string]string{"X-Forwarded-For": "198.51.100.1", "CF-Connecting-IP": "2001:db8::1"}, "198.51.100.1"},
		// a present but blank first hop does not fall through to CF
		{"xff blank first hop", map[string]string{"X-Forwarded-For": " , 10.0.0.1", "CF-Connecting-IP": "2001:db8::1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ForwardedIP(r))
		})
	}
}

func TestClientIPFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::5]:60500"
	assert.Equal(t, "2001:db8::5", ClientIP(r, true))
	assert.Equal(t, "", ClientIP(r, false))

	r.Header.Set("X-Forwarded-For", " , x")
	assert.Equal(t, "", ClientIP(r, true))
}

func TestRemoteHost(t *testing.T) {
	assert.Equal(t, "127.0.0.1", RemoteHost("127.0.0.1:60500"))
	assert.Equal(t, "::1", RemoteHost("[::1]:60500"))
	assert.Equal(t, "10.1.1.1", RemoteHost(" 10.1.1.1 "))
}

func TestMaskIP(t *testing.T) {
	assert.Equal(t, "", MaskIP(""))
	assert.Equal(t, "203.0.xxx.xxx", MaskIP("203.0.113.42"))
	assert.Equal(t, "2001:db8::8a2e:370:xxxx", MaskIP("2001:db8::8a2e:370:7334"))
	assert.Equal(t, "::xxxx", MaskIP("::1"))
	assert.Equal(t, "host.local", MaskIP("host.local"))
}

func TestHashString(t *testing.T) {
	assert.Equal(t, "45h", HashString(""))
	assert.Equal(t, "3t3a", HashString("a"))
	assert.Equal(t, "eslcxt", HashString("hello world"))
}

func TestHeaderHashIgnoresOrderAndCase(t *testing.T) {
	a := http.Header{}
	a.Set("User-Agent", "x")
	a.Set("Accept", "y")
	b := http.Header{"accept": {"z"}, "USER-AGENT": {"w"}}
	assert.Equal(t, HeaderHash(a), HeaderHash(b))
	assert.Equal(t, "js0n0c", HeaderHash(a))
}

func TestRequestHeaderHashIncludesHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "*/*")
	require.Equal(t, "example.com", r.Host)

	assert.Equal(t, "1uytuid", HeaderHash(r.Header))
	assert.Equal(t, "1f8w67", RequestHeaderHash(r))

	r.Host = ""
	assert.Equal(t, "1uytuid", RequestHeaderHash(r))
}

func TestCookieNames(t *testing.T) {
	h := http.Header{}
	h.Add("Cookie", `a=1; consent={"ads":false}; b=café;; c=2`)
	h.Add("Cookie", "d=Zürich")
	h.Add("Cookie", "flag")

	assert.Equal(t, []string{"a", "consent", "b", "c", "d", "flag"}, CookieNames(h))
	assert.Nil(t, CookieNames(http.Header{}))
}

func TestGenerateNonce(t *testing.T) {
	n1, err := GenerateNonce()
	require.NoError(t, err)
	n2, err := GenerateNonce()
	require.NoError(t, err)
	assert.Len(t, n1, 24)
	assert.NotEqual(t, n1, n2)
}
