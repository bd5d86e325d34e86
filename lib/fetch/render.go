package fetch

import (
	"context"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Renderer loads a page in a headless browser and returns the
// serialized DOM once client-side scripts had time to run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

var chromeNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// FindChrome returns the first chrome-like executable on PATH.
func FindChrome() (string, bool) {
	for _, name := range chromeNames {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, true
		}
	}
	return "", false
}

type ChromeRenderer struct {
	execPath  string
	userAgent string
	opts      RenderOptions
}

// NewChromeRenderer returns ErrRenderUnavailable when no browser can be found,
// callers are expected to carry on without a renderer in that case.
func NewChromeRenderer(userAgent string, opts RenderOptions) (*ChromeRenderer, error) {
	path := opts.ExecPath
	if path != "" {
		resolved, err := exec.LookPath(path)
		if err != nil {
			return nil, ErrRenderUnavailable
		}
		path = resolved
	} else {
		found, ok := FindChrome()
		if !ok {
			return nil, ErrRenderUnavailable
		}
		path = found
	}
	return &ChromeRenderer{execPath: path, userAgent: userAgent, opts: opts}, nil
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.execPath),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.userAgent))
	}
	if r.opts.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(r.opts.Proxy))
	}
	return opts
}

// Render starts a fresh browser for every call, the browser is torn down
// before returning whether or not navigation succeeded.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "ChromeRenderer.Render")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	if timeout := r.opts.timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	start := time.Now()
	err := chromedp.Run(
		browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.opts.settle()),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return "", err
	}
	return html, nil
}
