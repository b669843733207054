package types

import (
	"encoding/json"
	"time"
)

// Resolution methods reported in WhoAmI.Method.
const (
	MethodHeaders  = "headers"
	MethodCFObject = "cf-object"
	MethodLookup   = "lookup"
	MethodUnknown  = "unknown"
)

// WhoAmI is the server's view of the visitor. Geo fields are serialized as
// null when unset, and omitted entirely when Method is unknown.
type WhoAmI struct {
	IP      *string
	City    *string
	Region  *string
	Country *string
	ASN     *string
	Org     *string
	Method  string

	ServerCookieNames []string
	ServerCookieCount int
	HeaderHash        string
}

type whoAmIGeo struct {
	IP                *string  `json:"ip"`
	City              *string  `json:"city"`
	Region            *string  `json:"region"`
	Country           *string  `json:"country"`
	ASN               *string  `json:"asn"`
	Org               *string  `json:"org"`
	Method            string   `json:"method"`
	ServerCookieNames []string `json:"serverCookieNames"`
	ServerCookieCount int      `json:"serverCookieCount"`
	HeaderHash        string   `json:"headerHash,omitempty"`
}

type whoAmIMinimal struct {
	IP                *string  `json:"ip"`
	Method            string   `json:"method"`
	ServerCookieNames []string `json:"serverCookieNames"`
	ServerCookieCount int      `json:"serverCookieCount"`
	HeaderHash        string   `json:"headerHash,omitempty"`
}

func (w WhoAmI) MarshalJSON() ([]byte, error) {
	names := w.ServerCookieNames
	if names == nil {
		names = []string{}
	}
	if w.Method == MethodUnknown || w.Method == "" {
		return json.Marshal(whoAmIMinimal{
			IP:                w.IP,
			Method:            MethodUnknown,
			ServerCookieNames: names,
			ServerCookieCount: w.ServerCookieCount,
			HeaderHash:        w.HeaderHash,
		})
	}
	return json.Marshal(whoAmIGeo{
		IP:                w.IP,
		City:              w.City,
		Region:            w.Region,
		Country:           w.Country,
		ASN:               w.ASN,
		Org:               w.Org,
		Method:            w.Method,
		ServerCookieNames: names,
		ServerCookieCount: w.ServerCookieCount,
		HeaderHash:        w.HeaderHash,
	})
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type Screen struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AvailWidth  int     `json:"availWidth"`
	AvailHeight int     `json:"availHeight"`
	ColorDepth  int     `json:"colorDepth"`
	PixelRatio  float64 `json:"pixelRatio"`
}

type Connection struct {
	EffectiveType string  `json:"effectiveType"`
	Downlink      float64 `json:"downlink"`
	RTT           float64 `json:"rtt"`
	SaveData      bool    `json:"saveData"`
}

type Battery struct {
	Charging bool    `json:"charging"`
	Level    float64 `json:"level"`
}

type WebGL struct {
	Vendor   string `json:"vendor"`
	Renderer string `json:"renderer"`
}

type CookiePreview struct {
	Name         string `json:"name"`
	ValuePreview string `json:"valuePreview"`
}

type ClientCookies struct {
	Count   int             `json:"count"`
	Cookies []CookiePreview `json:"cookies"`
}

type StorageItem struct {
	Key     string `json:"key"`
	Bytes   int    `json:"bytes"`
	Preview string `json:"preview"`
}

type Storage struct {
	Count      int           `json:"count"`
	TotalBytes int           `json:"totalBytes"`
	Items      []StorageItem `json:"items"`
}

// ClientReport is what the page collects in the browser. Everything is
// optional because any browser API may be missing or throw.
type ClientReport struct {
	Timestamp         string            `json:"timestamp"`
	URL               string            `json:"url"`
	Referrer          *string           `json:"referrer"`
	UTMParams         map[string]string `json:"utmParams"`
	Timezone          string            `json:"timezone"`
	Locale            string            `json:"locale"`
	Languages         []string          `json:"languages"`
	UserAgent         string            `json:"userAgent"`
	UserAgentData     json.RawMessage   `json:"userAgentData"`
	Vendor            string            `json:"vendor"`
	Platform          string            `json:"platform"`
	Webdriver         bool              `json:"webdriver"`
	DoNotTrack        *string           `json:"doNotTrack"`
	CookiesEnabled    *bool             `json:"cookiesEnabled"`
	MemoryGB          *float64          `json:"memoryGB"`
	CPUCores          *int              `json:"cpuCores"`
	Screen            *Screen           `json:"screen"`
	Connection        *Connection       `json:"connection"`
	Battery           *Battery          `json:"battery"`
	WebGL             *WebGL            `json:"webgl"`
	MediaDeviceCounts map[string]int    `json:"mediaDeviceCounts"`
	Permissions       map[string]string `json:"permissions"`
	CanvasFingerprint *string           `json:"canvasFingerprint"`
	WebRTCIPs         []string          `json:"webRTCIPs"`
	CookiesClient     *ClientCookies    `json:"cookiesClient"`
	StorageLocal      *Storage          `json:"storageLocal"`
	StorageSession    *Storage          `json:"storageSession"`
}

type Browser struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	OS        string `json:"os"`
	OSVersion string `json:"osVersion"`
	Device    string `json:"device"`
}

// Finding severities.
const (
	SeverityInfo = "info"
	SeverityWarn = "warn"
	SeverityHigh = "high"
)

type Finding struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

type Analysis struct {
	ReportID    string    `json:"reportId"`
	ReceivedAt  time.Time `json:"receivedAt"`
	Browser     Browser   `json:"browser"`
	Findings    []Finding `json:"findings"`
	SignalCount int       `json:"signalCount"`
}
