// Package analysis reflects a client report back at the visitor: what the
// server can infer by combining it with the request that carried it.
package analysis

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"privacymirror/internal/types"
)

// Finding kinds.
const (
	KindUAMismatch       = "ua-mismatch"
	KindAutomation       = "automation"
	KindWebRTCLeak       = "webrtc-leak"
	KindWebRTCLocal      = "webrtc-local"
	KindLanguageMismatch = "language-mismatch"
	KindDNTMismatch      = "dnt-ignored-header"
	KindStoragePresent   = "storage-present"
)

// Request is the part of the HTTP request the analysis looks at.
type Request struct {
	ClientIP       string
	UserAgent      string
	AcceptLanguage string
	DNT            string
}

func RequestFrom(r *http.Request, clientIP string) Request {
	return Request{
		ClientIP:       clientIP,
		UserAgent:      r.Header.Get("User-Agent"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		DNT:            r.Header.Get("DNT"),
	}
}

type Analyzer struct {
	Now   func() time.Time
	NewID func() string
}

func New() *Analyzer {
	return &Analyzer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (a *Analyzer) Analyze(report *types.ClientReport, req Request) types.Analysis {
	ua := useragent.Parse(report.UserAgent)
	out := types.Analysis{
		ReportID:    a.NewID(),
		ReceivedAt:  a.Now().UTC(),
		Browser:     browserOf(ua),
		Findings:    []types.Finding{},
		SignalCount: signalCount(report),
	}
	add := func(kind, severity, format string, args ...interface{}) {
		out.Findings = append(out.Findings, types.Finding{Kind: kind, Severity: severity, Detail: fmt.Sprintf(format, args...)})
	}

	if report.UserAgent != "" && req.UserAgent != "" && report.UserAgent != req.UserAgent {
		add(KindUAMismatch, types.SeverityWarn, "navigator.userAgent differs from the User-Agent header")
	}

	switch {
	case report.Webdriver:
		add(KindAutomation, types.SeverityHigh, "navigator.webdriver is set")
	case ua.Bot:
		add(KindAutomation, types.SeverityHigh, "user agent identifies as %s", nonEmpty(ua.Name, "a bot"))
	case strings.Contains(strings.ToLower(report.UserAgent), "headless"):
		add(KindAutomation, types.SeverityHigh, "user agent identifies as a headless browser")
	}

	analyzeWebRTC(report.WebRTCIPs, req.ClientIP, add)

	if lang, header := primaryTag(report.Locale), primaryTag(firstAcceptLanguage(req.AcceptLanguage)); lang != "" && header != "" && lang != header {
		add(KindLanguageMismatch, types.SeverityInfo, "page language %q but Accept-Language prefers %q", report.Locale, firstAcceptLanguage(req.AcceptLanguage))
	}

	clientDNT := report.DoNotTrack != nil && *report.DoNotTrack == "1"
	if headerDNT := req.DNT == "1"; clientDNT != headerDNT {
		add(KindDNTMismatch, types.SeverityInfo, "doNotTrack=%v in script but DNT header=%v", clientDNT, headerDNT)
	}

	var parts []string
	if c := report.CookiesClient; c != nil && c.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d script-readable cookie(s)", c.Count))
	}
	if s := report.StorageLocal; s != nil && s.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d localStorage key(s), %d bytes", s.Count, s.TotalBytes))
	}
	if s := report.StorageSession; s != nil && s.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d sessionStorage key(s), %d bytes", s.Count, s.TotalBytes))
	}
	if len(parts) > 0 {
		add(KindStoragePresent, types.SeverityInfo, "%s", strings.Join(parts, "; "))
	}
	return out
}

func analyzeWebRTC(ips []string, clientIP string, add func(kind, severity, format string, args ...interface{})) {
	server, serverErr := netip.ParseAddr(clientIP)
	var local, public []string
	for _, raw := range ips {
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			// mDNS host candidates (*.local) hide the address.
			continue
		}
		addr = addr.Unmap()
		switch {
		case addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast():
			local = append(local, raw)
		case addr.IsGlobalUnicast():
			if serverErr != nil || addr != server.Unmap() {
				public = append(public, raw)
			}
		}
	}
	if len(public) > 0 {
		add(KindWebRTCLeak, types.SeverityHigh, "WebRTC exposed public address(es) %s not seen by the server", strings.Join(public, ", "))
	}
	if len(local) > 0 {
		add(KindWebRTCLocal, types.SeverityWarn, "WebRTC exposed local address(es) %s", strings.Join(local, ", "))
	}
}

func browserOf(ua useragent.UserAgent) types.Browser {
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Tablet:
		device = "tablet"
	case ua.Mobile:
		device = "mobile"
	case !ua.Desktop && ua.Name == "":
		device = "unknown"
	}
	return types.Browser{
		Name:      ua.Name,
		Version:   ua.Version,
		OS:        ua.OS,
		OSVersion: ua.OSVersion,
		Device:    device,
	}
}

// signalCount counts the top-level report fields that carry a value.
func signalCount(report *types.ClientReport) int {
	b, err := json.Marshal(report)
	if err != nil {
		return 0
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return 0
	}
	n := 0
	for _, v := range fields {
		switch string(v) {
		case "null", `""`, "[]", "{}", "false":
		default:
			n++
		}
	}
	return n
}

func firstAcceptLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

func primaryTag(tag string) string {
	primary, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
	if primary == "*" {
		return ""
	}
	return strings.ToLower(primary)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
