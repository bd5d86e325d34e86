package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reviewscrape/lib/fetch"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Options struct {
	// zero means DefaultPageDelay, negative means no delay
	PageDelay time.Duration
	MaxPages  int
	// defaults to DefaultSites
	Sites []Site
}

type Scraper struct {
	fetcher fetch.Fetcher
	sites   map[Source]Site
	opts    Options
}

func NewScraper(fetcher fetch.Fetcher, opts Options) *Scraper {
	if opts.PageDelay == 0 {
		opts.PageDelay = DefaultPageDelay
	}
	if opts.Sites == nil {
		opts.Sites = DefaultSites()
	}
	sites := map[Source]Site{}
	for _, s := range opts.Sites {
		sites[s.Source] = s
	}
	return &Scraper{fetcher: fetcher, sites: sites, opts: opts}
}

// Scrape runs every requested source one after the other. the only error
// is a request that fails validation, which is reported before anything
// is fetched; source failures are logged and recorded in the outcomes.
func (s *Scraper) Scrape(ctx context.Context, req Request) (Report, error) {
	err := req.Validate()
	if err != nil {
		return Report{}, err
	}

	ctx, span := tracer.Start(ctx, "Scraper.Scrape")
	defer span.End()
	span.SetAttributes(
		attribute.String("company", req.Company),
		attribute.String("start", req.Start.String()),
		attribute.String("end", req.End.String()),
	)

	report := Report{
		Company: req.Company,
		Start:   req.Start,
		End:     req.End,
		Source:  req.Selector,
		Reviews: []Review{},
	}
	for _, source := range req.Sources {
		outcome := s.scrapeSource(ctx, source, req)
		report.Outcomes = append(report.Outcomes, outcome.SourceOutcome)
		report.Reviews = append(report.Reviews, outcome.reviews...)
	}
	return report, nil
}

type sourceResult struct {
	SourceOutcome
	reviews []Review
}

func (s *Scraper) scrapeSource(ctx context.Context, source Source, req Request) sourceResult {
	ctx, span := tracer.Start(ctx, "Scraper.scrapeSource")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(source)))

	result := sourceResult{SourceOutcome: SourceOutcome{Source: source}}
	site, ok := s.sites[source]
	if !ok {
		result.Err = errors.New("no site configured")
		slog.ErrorContext(ctx, "failed to scrape source", "source", source, "err", result.Err)
		return result
	}

	slog.InfoContext(ctx, "searching for company page", "source", site.Label, "company", req.Company)
	link, err := Discover(ctx, s.fetcher, site, req.Company, req.RenderHint)
	if errors.Is(err, ErrCompanyNotFound) {
		result.Err = err
		slog.WarnContext(ctx, "company page not found", "source", site.Label)
		return result
	}
	if err != nil {
		result.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		slog.ErrorContext(ctx, "failed to scrape source", "source", site.Label, "err", err)
		return result
	}
	result.URL = link
	slog.InfoContext(ctx, "found company page", "source", site.Label, "url", link)

	walker := Walker{
		Fetcher:  s.fetcher,
		Delay:    s.opts.PageDelay,
		MaxPages: s.opts.MaxPages,
		Hint:     req.RenderHint,
	}
	collected, pages := walker.Walk(ctx, link, func(ctx context.Context, doc *goquery.Document) []Review {
		return Extract(ctx, doc, source)
	})

	result.reviews = FilterByDate(collected, req.Start, req.End)
	result.Pages = pages
	result.Reviews = len(result.reviews)
	slog.InfoContext(
		ctx, "finished source",
		"source", site.Label,
		"pages", pages,
		"extracted", len(collected),
		"in_range", len(result.reviews),
	)
	return result
}
