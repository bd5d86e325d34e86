package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"reviewscrape/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("reviewscrape.lib.fetch")
var meter = telemetry.Meter("reviewscrape.lib.fetch")

var pagesCounter, _ = meter.Int64Counter("fetch.pages", metric.WithDescription("pages fetched, by method"))
var failureCounter, _ = meter.Int64Counter("fetch.failures", metric.WithDescription("urls that could not be fetched, by kind"))

// Fetcher is what the scrapers depend on.
type Fetcher interface {
	// hint asks for a rendered page whenever the plain fetch does not succeed,
	// a blocked (403) response always asks for one.
	Fetch(ctx context.Context, url string, hint bool) (string, error)
}

// Orchestrator tries the transport first and falls back to the renderer.
// the renderer is optional, a nil renderer means blocked pages simply fail.
type Orchestrator struct {
	transport Transport
	renderer  Renderer
}

func NewOrchestrator(transport Transport, renderer Renderer) *Orchestrator {
	return &Orchestrator{transport: transport, renderer: renderer}
}

func (o *Orchestrator) CanRender() bool {
	return o.renderer != nil
}

func (o *Orchestrator) Fetch(ctx context.Context, url string, hint bool) (string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.Bool("render_hint", hint),
	)

	var failure *Failure
	res, err := o.transport.Get(ctx, url)
	switch {
	case err != nil:
		failure = &Failure{URL: url, Kind: KindTransport, Err: err}
	case res.Status >= 200 && res.Status < 300:
		pagesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "transport")))
		return res.Body, nil
	default:
		failure = classify(url, res)
	}

	if failure.Kind != KindBlocked && !hint {
		o.fail(ctx, failure)
		span.SetStatus(codes.Error, failure.Error())
		return "", failure
	}

	slog.DebugContext(ctx, "falling back to rendered fetch", "url", url, "reason", failure.Kind.String())
	body, err := o.render(ctx, url, failure)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return body, nil
}

// Render skips the transport entirely.
func (o *Orchestrator) Render(ctx context.Context, url string) (string, error) {
	return o.render(ctx, url, nil)
}

// cause is the transport failure that led here, if any. when no renderer is
// available the returned failure keeps its classification.
func (o *Orchestrator) render(ctx context.Context, url string, cause *Failure) (string, error) {
	if o.renderer == nil {
		failure := &Failure{URL: url, Kind: KindRender, Err: ErrRenderUnavailable}
		if cause != nil {
			failure.Kind = cause.Kind
			failure.Status = cause.Status
		}
		o.fail(ctx, failure)
		return "", failure
	}

	body, err := o.renderer.Render(ctx, url)
	if err != nil {
		failure := &Failure{URL: url, Kind: KindRender, Err: fmt.Errorf("render error: %w", err)}
		o.fail(ctx, failure)
		return "", failure
	}
	pagesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "render")))
	return body, nil
}

func (o *Orchestrator) fail(ctx context.Context, failure *Failure) {
	failureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", failure.Kind.String())))
}
