// Package probe drives a headless Chrome through the mirror page and reads
// back the report the page publishes.
package probe

import (
	"context"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// reportExpression is truthy once the page has settled both the server view
// and the analysis.
const reportExpression = `window.__mirrorReport`

type Options struct {
	URL       string
	Timeout   time.Duration
	Headless  bool
	UserAgent string
	ExecPath  string
}

func (o Options) Validate() error {
	u, err := url.Parse(o.URL)
	if err != nil {
		return errors.Wrapf(err, "parse url %q", o.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("url must be http or https, got %q", o.URL)
	}
	if o.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox,
	}
	if o.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}

// Report is what the page publishes: server view, client signals and the
// server's analysis of them.
type Report struct {
	Server   map[string]interface{} `json:"server"`
	Client   map[string]interface{} `json:"client"`
	Analysis map[string]interface{} `json:"analysis"`
}

func Run(ctx context.Context, o Options) (*Report, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, o.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, o.Timeout)
	defer cancel()

	var report Report
	err := chromedp.Run(runCtx,
		chromedp.Navigate(o.URL),
		chromedp.WaitReady("body"),
		chromedp.Poll(reportExpression, &report, chromedp.WithPollingTimeout(o.Timeout)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "probe %s", o.URL)
	}
	return &report, nil
}

// Summary condenses a report into the handful of facts worth printing.
type Summary struct {
	Method    string   `json:"method"`
	Webdriver bool     `json:"webdriver"`
	WebRTCIPs int      `json:"webrtcIps"`
	Findings  []string `json:"findings"`
}

func Summarize(r *Report) Summary {
	s := Summary{Method: "unavailable", Findings: []string{}}
	if r == nil {
		return s
	}
	if m, ok := r.Server["method"].(string); ok {
		s.Method = m
	}
	s.Webdriver, _ = r.Client["webdriver"].(bool)
	if ips, ok := r.Client["webRTCIPs"].([]interface{}); ok {
		s.WebRTCIPs = len(ips)
	}
	if findings, ok := r.Analysis["findings"].([]interface{}); ok {
		for _, f := range findings {
			if fm, ok := f.(map[string]interface{}); ok {
				if kind, ok := fm["kind"].(string); ok {
					s.Findings = append(s.Findings, kind)
				}
			}
		}
	}
	return s
}
