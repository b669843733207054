package utils

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// HashString is the djb2 hash over UTF-16 code units, rendered in base 36.
// Must agree with hashString in static/helpers.js.
func HashString(s string) string {
	var h uint32 = 5381
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) + h + uint32(c)
	}
	return strconv.FormatUint(uint64(h), 36)
}

// HeaderHash hashes the sorted, lower-cased set of request header names.
// Clients that send the same headers get the same value regardless of order.
func HeaderHash(h http.Header) string {
	return hashNames(headerNames(h))
}

// RequestHeaderHash is HeaderHash over everything the client sent. net/http
// moves Host out of the header map, so it is folded back in here.
func RequestHeaderHash(r *http.Request) string {
	names := headerNames(r.Header)
	if r.Host != "" && r.Header.Get("Host") == "" {
		names = append(names, "host")
	}
	return hashNames(names)
}

func headerNames(h http.Header) []string {
	names := make([]string, 0, len(h)+1)
	for name := range h {
		names = append(names, strings.ToLower(name))
	}
	return names
}

func hashNames(names []string) string {
	sort.Strings(names)
	return HashString(strings.Join(names, ","))
}
