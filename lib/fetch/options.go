package fetch

import (
	"time"

	"reviewscrape/lib/restyutil"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

type RetryOptions struct {
	Count     int   `json:"count"`
	WaitMs    int   `json:"wait_ms"`
	MaxWaitMs int   `json:"max_wait_ms"`
	Statuses  []int `json:"statuses"`
}

type RenderOptions struct {
	// path to a chrome or chromium binary, looked up on PATH when empty
	ExecPath       string `json:"exec_path"`
	SettleMs       int    `json:"settle_ms"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// the browser does not inherit Options.Proxy, it only uses this one
	Proxy string `json:"proxy"`
}

func (o RenderOptions) settle() time.Duration {
	return time.Duration(o.SettleMs) * time.Millisecond
}

func (o RenderOptions) timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Options is built once and handed to the transport and renderer,
// nothing reads it after construction.
type Options struct {
	UserAgent               string        `json:"user_agent"`
	TimeoutSeconds          int           `json:"timeout_seconds"`
	Proxy                   string        `json:"proxy"`
	DisableCloudflareBypass bool          `json:"disable_cloudflare_bypass"`
	Retry                   RetryOptions  `json:"retry"`
	Render                  RenderOptions `json:"render"`

	// receives a dump of every request/response pair when debug logging is on
	Instrument restyutil.InstrumentOutput `json:"-"`
}

func DefaultOptions() Options {
	return Options{
		UserAgent:      DefaultUserAgent,
		TimeoutSeconds: 15,
		Retry: RetryOptions{
			Count:     3,
			WaitMs:    500,
			MaxWaitMs: 4000,
			Statuses:  []int{429, 500, 502, 503, 504},
		},
		Render: RenderOptions{
			SettleMs:       2000,
			TimeoutSeconds: 60,
		},
	}
}
