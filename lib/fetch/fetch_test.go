package fetch

import (
	"context"
	"errors"
	"testing"

	"reviewscrape/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	res   Response
	err   error
	calls []string
}

func (f *fakeTransport) Get(ctx context.Context, url string) (Response, error) {
	f.calls = append(f.calls, url)
	return f.res, f.err
}

type fakeRenderer struct {
	html  string
	err   error
	calls []string
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	return f.html, f.err
}

const pageUrl = "https://www.g2.com/products/acme/reviews"

func TestFetchSuccess(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:fetch")
	defer cleanup()

	transport := &fakeTransport{res: Response{Status: 200, Body: "<html>plain</html>"}}
	renderer := &fakeRenderer{html: "<html>rendered</html>"}
	o := NewOrchestrator(transport, renderer)

	body, err := o.Fetch(context.Background(), pageUrl, true)
	require.NoError(t, err)
	require.Equal(t, "<html>plain</html>", body)
	require.Empty(t, renderer.calls)
	require.Contains(t, telemetry.RecordedSpans(), "Orchestrator.Fetch")
}

func TestFetchBlockedRenders(t *testing.T) {
	transport := &fakeTransport{res: Response{Status: 403, Body: "denied"}}
	renderer := &fakeRenderer{html: "<html>rendered</html>"}
	o := NewOrchestrator(transport, renderer)

	body, err := o.Fetch(context.Background(), pageUrl, false)
	require.NoError(t, err)
	require.Equal(t, "<html>rendered</html>", body)
	require.Equal(t, []string{pageUrl}, renderer.calls)
}

func TestFetchBlockedWithoutRenderer(t *testing.T) {
	transport := &fakeTransport{res: Response{Status: 403, Body: "denied"}}
	o := NewOrchestrator(transport, nil)
	require.False(t, o.CanRender())

	_, err := o.Fetch(context.Background(), pageUrl, false)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRenderUnavailable)
	require.Contains(t, err.Error(), "render capability unavailable")

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, KindBlocked, failure.Kind)
	require.Equal(t, 403, failure.Status)
	require.Equal(t, pageUrl, failure.URL)
}

func TestFetchStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{404, KindNotFound},
		{410, KindNotFound},
		{500, KindTransport},
		{503, KindTransport},
		{418, KindTransport},
	}
	for _, test := range cases {
		renderer := &fakeRenderer{html: "rendered"}
		o := NewOrchestrator(&fakeTransport{res: Response{Status: test.status}}, renderer)

		_, err := o.Fetch(context.Background(), pageUrl, false)
		var failure *Failure
		require.True(t, errors.As(err, &failure), test.status)
		require.Equal(t, test.kind, failure.Kind, test.status)
		require.Equal(t, test.status, failure.Status)
		require.Empty(t, renderer.calls, "only blocked responses render without a hint")
	}
}

func TestFetchHintRendersOnFailure(t *testing.T) {
	renderer := &fakeRenderer{html: "rendered"}
	o := NewOrchestrator(&fakeTransport{res: Response{Status: 500}}, renderer)

	body, err := o.Fetch(context.Background(), pageUrl, true)
	require.NoError(t, err)
	require.Equal(t, "rendered", body)

	o = NewOrchestrator(&fakeTransport{err: errors.New("connection reset")}, renderer)
	body, err = o.Fetch(context.Background(), pageUrl, true)
	require.NoError(t, err)
	require.Equal(t, "rendered", body)
}

func TestFetchHintWithoutRenderer(t *testing.T) {
	o := NewOrchestrator(&fakeTransport{res: Response{Status: 404}}, nil)

	_, err := o.Fetch(context.Background(), pageUrl, true)
	require.ErrorIs(t, err, ErrRenderUnavailable)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, KindNotFound, failure.Kind)
}

func TestFetchTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	o := NewOrchestrator(&fakeTransport{err: cause}, &fakeRenderer{})

	_, err := o.Fetch(context.Background(), pageUrl, false)
	require.ErrorIs(t, err, cause)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, KindTransport, failure.Kind)
	require.Equal(t, 0, failure.Status)
}

func TestFetchRenderError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	o := NewOrchestrator(
		&fakeTransport{res: Response{Status: 403}},
		&fakeRenderer{err: cause},
	)

	_, err := o.Fetch(context.Background(), pageUrl, false)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "render error: net::ERR_NAME_NOT_RESOLVED")

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, KindRender, failure.Kind)
}

func TestRenderDirect(t *testing.T) {
	transport := &fakeTransport{res: Response{Status: 200, Body: "plain"}}
	renderer := &fakeRenderer{html: "rendered"}
	o := NewOrchestrator(transport, renderer)

	body, err := o.Render(context.Background(), pageUrl)
	require.NoError(t, err)
	require.Equal(t, "rendered", body)
	require.Empty(t, transport.calls)

	_, err = NewOrchestrator(transport, nil).Render(context.Background(), pageUrl)
	require.ErrorIs(t, err, ErrRenderUnavailable)
}

func TestParseRenderMode(t *testing.T) {
	mode, err := ParseRenderMode("")
	require.NoError(t, err)
	require.Equal(t, RenderAuto, mode)

	mode, err = ParseRenderMode("off")
	require.NoError(t, err)
	require.Equal(t, RenderOff, mode)

	_, err = ParseRenderMode("always")
	require.Error(t, err)
}

func TestNewRenderOff(t *testing.T) {
	opts := DefaultOptions()
	opts.DisableCloudflareBypass = true

	o, err := New(opts, RenderOff)
	require.NoError(t, err)
	require.False(t, o.CanRender())
}
