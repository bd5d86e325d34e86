package fetch

import (
	"errors"
	"fmt"
	"log/slog"
)

type RenderMode string

const (
	// use a browser when one is installed
	RenderAuto RenderMode = "auto"
	// never start a browser
	RenderOff RenderMode = "off"
)

func ParseRenderMode(s string) (RenderMode, error) {
	switch RenderMode(s) {
	case RenderAuto, "":
		return RenderAuto, nil
	case RenderOff:
		return RenderOff, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// New builds the transport from `opts` and, depending on `mode`, a chrome
// renderer. a missing browser only disables the fallback.
func New(opts Options, mode RenderMode) (*Orchestrator, error) {
	transport := NewRestyTransport(opts)
	if mode == RenderOff {
		return NewOrchestrator(transport, nil), nil
	}

	renderer, err := NewChromeRenderer(opts.UserAgent, opts.Render)
	if errors.Is(err, ErrRenderUnavailable) {
		slog.Warn("no chrome or chromium executable found, rendered fetches are disabled")
		return NewOrchestrator(transport, nil), nil
	}
	if err != nil {
		return nil, err
	}
	return NewOrchestrator(transport, renderer), nil
}
