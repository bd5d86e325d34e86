package fetch

import (
	"context"
	"slices"
	"time"

	"reviewscrape/lib/restyutil"
	"reviewscrape/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type Response struct {
	Status int
	Body   string
}

// Transport issues a plain GET without running any scripts on the page.
// an error means no response was received at all.
type Transport interface {
	Get(ctx context.Context, url string) (Response, error)
}

// RestyTransport is a Transport backed by one shared resty client,
// it retries on the configured statuses with exponential backoff.
type RestyTransport struct {
	client *resty.Client
}

func NewRestyTransport(opts Options) *RestyTransport {
	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetTimeout(time.Duration(opts.TimeoutSeconds) * time.Second)

	// must be set before the transport gets wrapped
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if !opts.DisableCloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	statuses := opts.Retry.Statuses
	client.SetRetryCount(opts.Retry.Count)
	client.SetRetryWaitTime(time.Duration(opts.Retry.WaitMs) * time.Millisecond)
	client.SetRetryMaxWaitTime(time.Duration(opts.Retry.MaxWaitMs) * time.Millisecond)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return res != nil && slices.Contains(statuses, res.StatusCode())
	})

	telemetry.InstrumentResty(client, "reviewscrape/fetch/http")
	restyutil.InstrumentClient(client, opts.Instrument)

	return &RestyTransport{client: client}
}

func (t *RestyTransport) Get(ctx context.Context, url string) (Response, error) {
	res, err := t.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: res.StatusCode(),
		Body:   res.String(),
	}, nil
}
