package utils

import (
	"net/http"
	"strings"
)

// CookieNames lists every cookie name in the request's Cookie headers, in
// order. Unlike http.Request.Cookies it keeps pairs whose value net/http
// would reject (quotes, non-ASCII), since those still reached the server.
// Must agree with parseCookies in static/helpers.js.
func CookieNames(h http.Header) []string {
	var names []string
	for _, line := range h.Values("Cookie") {
		for _, pair := range strings.Split(line, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, _, _ := strings.Cut(pair, "=")
			names = append(names, name)
		}
	}
	return names
}
