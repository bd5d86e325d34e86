package reviews

import (
	"context"
	"strings"
	"unicode/utf8"

	"reviewscrape/lib/chrono"
	"reviewscrape/lib/htmlutil"
	"reviewscrape/lib/telemetry"
	"reviewscrape/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("reviewscrape.lib.scrapers.reviews")
var meter = telemetry.Meter("reviewscrape.lib.scrapers.reviews")

var extractedCounter, _ = meter.Int64Counter("reviews.extracted", metric.WithDescription("reviews extracted from pages, by source"))

const (
	minDescriptionLength = 40
	fallbackTitleLength  = 120
)

// known review containers on the supported sites, articles are included
// because most review widgets render one per review.
const knownContainers = "div.g2-review, div.c-review, div.review-card, article"

// candidates returns every element that might hold a single review, with
// exact markup duplicates removed.
func candidates(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	seen := map[string]struct{}{}
	add := func(_ int, s *goquery.Selection) {
		markup, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		if _, ok := seen[markup]; ok {
			return
		}
		seen[markup] = struct{}{}
		out = append(out, s)
	}

	doc.Find("[data-review-id]").Each(add)
	doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.AttrOr("class", "")), "review")
	}).Each(add)
	doc.Find(knownContainers).Each(add)

	return out
}

func extractTitle(el *goquery.Selection, description string) string {
	for _, heading := range []string{"h3", "h4", "h2"} {
		h := el.Find(heading).First()
		if h.Length() == 0 {
			continue
		}
		title := htmlutil.Text(h, " ")
		if title != "" {
			return title
		}
		break
	}
	return textutil.Truncate(description, fallbackTitleLength) + "..."
}

func extractDate(el *goquery.Selection) *chrono.Date {
	var found *chrono.Date
	el.Find("time, span, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		d, err := chrono.ParseFuzzy(htmlutil.Text(s, " "))
		if err != nil {
			return true
		}
		found = &d
		return false
	})
	return found
}

func extractRating(el *goquery.Selection) *string {
	for _, token := range htmlutil.Tokens(el, "|") {
		if strings.HasSuffix(token, "/5") ||
			strings.HasSuffix(token, " out of 5") ||
			strings.HasPrefix(strings.ToLower(token), "rating") {
			rating := token
			return &rating
		}
	}
	return nil
}

// Extract finds review-like elements on a page and turns them into reviews.
// elements with less than 40 characters of text are dropped, every other
// field degrades to empty when it can't be found.
func Extract(ctx context.Context, doc *goquery.Document, source Source) []Review {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	var reviews []Review
	found := candidates(doc)
	for _, el := range found {
		description := htmlutil.Text(el, " ")
		if utf8.RuneCountInString(description) < minDescriptionLength {
			continue
		}
		reviews = append(reviews, Review{
			Title:       extractTitle(el, description),
			Description: description,
			Date:        extractDate(el),
			Source:      source,
			Additional: Additional{
				Rating: extractRating(el),
			},
		})
	}

	reviews = Dedupe(reviews)
	span.SetAttributes(
		attribute.Int("candidates", len(found)),
		attribute.Int("reviews", len(reviews)),
	)
	extractedCounter.Add(ctx, int64(len(reviews)), metric.WithAttributes(attribute.String("source", string(source))))
	return reviews
}
