package utils

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// ForwardedIP returns the first address in X-Forwarded-For, or in
// CF-Connecting-IP when X-Forwarded-For is absent. It returns "" when neither
// header yields a value.
func ForwardedIP(r *http.Request) string {
	header := r.Header.Get("X-Forwarded-For")
	if header == "" {
		header = r.Header.Get("CF-Connecting-IP")
	}
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}

// RemoteHost returns the host portion of a connection address such as
// "[::1]:60500" or "127.0.0.1:60500".
func RemoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.TrimSpace(remoteAddr)
	}
	return host
}

// ClientIP resolves the visitor address from forwarding headers, falling
// back to the connection address when fallback is set.
func ClientIP(r *http.Request, fallback bool) string {
	if ip := ForwardedIP(r); ip != "" {
		return ip
	}
	if fallback && r.Header.Get("X-Forwarded-For") == "" && r.Header.Get("CF-Connecting-IP") == "" {
		return RemoteHost(r.RemoteAddr)
	}
	return ""
}

var lastIPv6Group = regexp.MustCompile(`(?i):[0-9a-f]{1,4}$`)

// MaskIP hides the host part of an address for display: a.b.xxx.xxx for
// dotted quads, the last group replaced by xxxx otherwise. Must agree with
// maskIP in static/helpers.js.
func MaskIP(ip string) string {
	if ip == "" {
		return ip
	}
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	return lastIPv6Group.ReplaceAllString(ip, ":xxxx")
}
