package reviews

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reviewscrape/lib/fetch"
	"reviewscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultPageDelay = 800 * time.Millisecond

// how the "next page" link is found, in order of preference
var nextPageMatchers = []Matcher{
	AnchorTextMatcher("next"),
	LinkRelMatcher("next"),
	SelectorMatcher("a.pagination-next, a.next"),
}

// PageExtractor turns one fetched page into reviews.
type PageExtractor func(ctx context.Context, doc *goquery.Document) []Review

// Walker follows "next page" links from a listing page.
type Walker struct {
	Fetcher fetch.Fetcher
	// pause between two page fetches
	Delay time.Duration
	// stop after this many pages, 0 means no limit
	MaxPages int
	Hint     bool
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Walk never fails: a page that can't be fetched ends the walk and whatever
// was collected before it is returned. every url is fetched at most once.
func (w Walker) Walk(ctx context.Context, startUrl string, extract PageExtractor) ([]Review, int) {
	ctx, span := tracer.Start(ctx, "Walker.Walk")
	defer span.End()

	var reviews []Review
	visited := map[string]struct{}{}
	next := startUrl

	for next != "" {
		if _, ok := visited[next]; ok {
			slog.DebugContext(ctx, "pagination loops back", "url", next)
			break
		}
		if w.MaxPages > 0 && len(visited) >= w.MaxPages {
			slog.InfoContext(ctx, "page limit reached", "max_pages", w.MaxPages)
			break
		}
		if len(visited) > 0 {
			pause(ctx, w.Delay)
		}
		visited[next] = struct{}{}
		current := next
		next = ""

		body, err := w.Fetcher.Fetch(ctx, current, w.Hint)
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch page", "url", current, "err", err)
			break
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse page", "url", current, "err", err)
			break
		}
		reviews = append(reviews, extract(ctx, doc)...)

		href, ok := FirstMatch(doc, nextPageMatchers)
		if !ok {
			break
		}
		resolved, err := htmlutil.Resolve(ctx, current, href)
		if err != nil {
			slog.WarnContext(ctx, "invalid next page link", "url", current, "href", href, "err", err)
			break
		}
		next = resolved
	}

	span.SetAttributes(
		attribute.Int("pages", len(visited)),
		attribute.Int("reviews", len(reviews)),
	)
	return reviews, len(visited)
}
