package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"reviewscrape/lib/fetch"
	"reviewscrape/lib/htmlutil"
	"reviewscrape/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrCompanyNotFound = errors.New("company page not found")

// Site describes how to find a company's review listing on one aggregator.
type Site struct {
	Source Source
	// how the site is named in progress output
	Label   string
	BaseURL string
	// candidate pages to look for a link on, tried in order
	Candidates func(baseUrl, company string) []string
	// when false, a candidate that fails to fetch fails the whole discovery
	SkipFailedCandidates bool
	Matchers             []Matcher
}

const (
	G2BaseURL          = "https://www.g2.com"
	CapterraBaseURL    = "https://www.capterra.com"
	TrustRadiusBaseURL = "https://www.trustradius.com"
)

func productHref(href string) bool {
	return strings.HasPrefix(href, "/products/") ||
		strings.Contains(href, "/products/") ||
		strings.Contains(href, "/product/")
}

func capterraHref(href string) bool {
	return strings.HasPrefix(href, "/p") ||
		strings.Contains(href, "/product/") ||
		strings.Contains(href, "/software/") ||
		strings.HasPrefix(href, "/vendor/")
}

func G2Site(baseUrl string) Site {
	return Site{
		Source:  G2,
		Label:   "G2",
		BaseURL: baseUrl,
		Candidates: func(baseUrl, company string) []string {
			return []string{fmt.Sprintf("%s/search?q=%s", baseUrl, url.QueryEscape(company))}
		},
		Matchers: []Matcher{HrefMatcher(productHref)},
	}
}

func CapterraSite(baseUrl string) Site {
	return Site{
		Source:  Capterra,
		Label:   "Capterra",
		BaseURL: baseUrl,
		Candidates: func(baseUrl, company string) []string {
			query := url.QueryEscape(company)
			slug := textutil.Slugify(company)
			return []string{
				fmt.Sprintf("%s/search?search=%s", baseUrl, query),
				fmt.Sprintf("%s/search?query=%s", baseUrl, query),
				fmt.Sprintf("%s/p/%s", baseUrl, slug),
				fmt.Sprintf("%s/software/%s", baseUrl, slug),
			}
		},
		SkipFailedCandidates: true,
		Matchers: []Matcher{
			HrefMatcher(capterraHref),
			LinkRelMatcher("canonical"),
		},
	}
}

func TrustRadiusSite(baseUrl string) Site {
	return Site{
		Source:  TrustRadius,
		Label:   "TrustRadius",
		BaseURL: baseUrl,
		Candidates: func(baseUrl, company string) []string {
			return []string{fmt.Sprintf("%s/search?query=%s", baseUrl, url.QueryEscape(company))}
		},
		Matchers: []Matcher{HrefMatcher(productHref)},
	}
}

func DefaultSites() []Site {
	return []Site{
		G2Site(G2BaseURL),
		CapterraSite(CapterraBaseURL),
		TrustRadiusSite(TrustRadiusBaseURL),
	}
}

// Discover returns the absolute url of the company's page on `site`,
// the first matching link wins.
func Discover(ctx context.Context, fetcher fetch.Fetcher, site Site, company string, hint bool) (string, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", string(site.Source)),
		attribute.String("company", company),
	)

	for _, candidate := range site.Candidates(site.BaseURL, company) {
		body, err := fetcher.Fetch(ctx, candidate, hint)
		if err != nil {
			if site.SkipFailedCandidates {
				slog.DebugContext(ctx, "skipping search candidate", "url", candidate, "err", err)
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch search page")
			return "", err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			slog.DebugContext(ctx, "skipping unparsable search candidate", "url", candidate, "err", err)
			continue
		}
		href, ok := FirstMatch(doc, site.Matchers)
		if !ok {
			slog.DebugContext(
				ctx, "no company link on search candidate",
				"url", candidate,
				"anchors", len(htmlutil.GetAnchors(ctx, doc.Find("a"))),
			)
			continue
		}
		return htmlutil.Resolve(ctx, site.BaseURL, href)
	}

	span.SetStatus(codes.Error, ErrCompanyNotFound.Error())
	return "", ErrCompanyNotFound
}
