package config

import (
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type GeoIPConfig struct {
	CityDB string `yaml:"city_db"`
	ASNDB  string `yaml:"asn_db"`
}

type EdgeConfig struct {
	ContextHeader          string `yaml:"context_header"`
	TrustContextHeader     bool   `yaml:"trust_context_header"`
	TrustCloudflareHeaders bool   `yaml:"trust_cloudflare_headers"`
}

type PageConfig struct {
	WebRTCTimeoutMS int      `yaml:"webrtc_timeout_ms"`
	STUNServers     []string `yaml:"stun_servers"`
}

type ReportConfig struct {
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MirrorConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RemoteAddrFallback uses the connection address when no forwarding
	// header carries the client IP.
	RemoteAddrFallback bool `yaml:"remote_addr_fallback"`
	MaskLoggedIPs      bool `yaml:"mask_logged_ips"`

	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	BuildVersion     string `yaml:"build_version"`
	CompressionLevel int    `yaml:"compression_level"`

	GeoIP   GeoIPConfig   `yaml:"geoip"`
	Edge    EdgeConfig    `yaml:"edge"`
	Page    PageConfig    `yaml:"page"`
	Report  ReportConfig  `yaml:"report"`
	Metrics MetricsConfig `yaml:"metrics"`
}

func DefaultConfig() *MirrorConfig {
	return &MirrorConfig{
		ListenAddr:         ":8080",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		RemoteAddrFallback: true,
		MaskLoggedIPs:      true,
		LogLevel:           "info",
		LogFormat:          "console",
		BuildVersion:       "0.2.0",
		CompressionLevel:   5,
		Edge: EdgeConfig{
			ContextHeader:          "X-Edge-Context",
			TrustContextHeader:     false,
			TrustCloudflareHeaders: true,
		},
		Page: PageConfig{
			WebRTCTimeoutMS: 1500,
			STUNServers:     []string{"stun:stun.l.google.com:19302"},
		},
		Report: ReportConfig{
			MaxBodyBytes: 256 << 10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig overlays the YAML file at path onto the defaults. A missing file
// yields the defaults and no error.
func LoadConfig(path string) (*MirrorConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("config file not found, using defaults")
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c *MirrorConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errors.Wrapf(err, "invalid listen_addr %q", c.ListenAddr)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Page.WebRTCTimeoutMS < 100 || c.Page.WebRTCTimeoutMS > 30000 {
		return errors.Errorf("page.webrtc_timeout_ms must be between 100 and 30000, got %d", c.Page.WebRTCTimeoutMS)
	}
	if c.Report.MaxBodyBytes <= 0 {
		return errors.New("report.max_body_bytes must be positive")
	}
	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return errors.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
