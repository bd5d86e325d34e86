package reviews

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reviewscrape/lib/chrono"
	"reviewscrape/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const acmeSearch = `<html><body><a href="/p/555/Acme-Corp/">Acme Corp</a></body></html>`

func acmeReviews(date string) string {
	return `<html><body>
		<article>
			<h3>Great tool</h3>
			<p>Our whole team relies on it every single day without issues.</p>
			<time>` + date + `</time>
		</article>
	</body></html>`
}

func scrapeAcme(t *testing.T, date string) map[string]any {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.capterra.com/search?search=Acme+Corp": acmeSearch,
		"https://www.capterra.com/p/555/Acme-Corp/":        acmeReviews(date),
	}}
	scraper := NewScraper(fetcher, Options{PageDelay: -1})

	req := Request{
		Company:  "Acme Corp",
		Start:    chrono.NewDate(2023, 1, 1),
		End:      chrono.NewDate(2023, 12, 31),
		Selector: "capterra",
		Sources:  []Source{Capterra},
	}
	report, err := scraper.Scrape(context.Background(), req)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, WriteReport(path, report))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(contents, &decoded))
	return decoded
}

func TestScrapeCapterraInRange(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:reviews")
	defer cleanup()

	decoded := scrapeAcme(t, "2023-06-01")
	require.Equal(t, "Acme Corp", decoded["company"])
	require.Equal(t, "2023-01-01", decoded["start"])
	require.Equal(t, "2023-12-31", decoded["end"])
	require.Equal(t, "capterra", decoded["source"])

	reviews := decoded["reviews"].([]any)
	require.Len(t, reviews, 1)
	review := reviews[0].(map[string]any)
	require.Equal(t, "capterra", review["source"])
	require.Equal(t, "Great tool", review["title"])
	require.Equal(t, "2023-06-01", review["date"])
	require.Equal(t, map[string]any{"rating": nil, "reviewer": nil}, review["additional"])

	spans := telemetry.RecordedSpans()
	require.Contains(t, spans, "Scraper.Scrape")
	require.Contains(t, spans, "Walker.Walk")
}

func TestScrapeCapterraOutOfRange(t *testing.T) {
	decoded := scrapeAcme(t, "2022-01-01")
	require.Equal(t, []any{}, decoded["reviews"])
}

func TestScrapeCapterraTimestamps(t *testing.T) {
	decoded := scrapeAcme(t, "2022-01-01T00:00:00Z")
	require.Equal(t, []any{}, decoded["reviews"])

	decoded = scrapeAcme(t, "2023-06-01T09:30:00+00:00")
	reviews := decoded["reviews"].([]any)
	require.Len(t, reviews, 1)
	require.Equal(t, "2023-06-01", reviews[0].(map[string]any)["date"])
}

func TestScrapeValidatesBeforeFetching(t *testing.T) {
	fetcher := &fakeFetcher{}
	scraper := NewScraper(fetcher, Options{PageDelay: -1})

	_, err := scraper.Scrape(context.Background(), Request{
		Company: "Acme Corp",
		Start:   chrono.NewDate(2023, 12, 31),
		End:     chrono.NewDate(2023, 1, 1),
		Sources: AllSources,
	})
	require.ErrorIs(t, err, ErrInvalidRange)
	require.Empty(t, fetcher.calls)
}

func TestScrapeAllSourcesSurvivesFailures(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		// g2 finds nothing, capterra is entirely unreachable
		"https://www.g2.com/search?q=Acme":              `<p>no results</p>`,
		"https://www.trustradius.com/search?query=Acme": `<a href="/products/acme/reviews">Acme</a>`,
		"https://www.trustradius.com/products/acme/reviews": `<div class="review">
			<h3>Fine</h3><p>Does what it says on the tin, support answers within hours.</p>
		</div>`,
	}}
	scraper := NewScraper(fetcher, Options{PageDelay: -1})

	report, err := scraper.Scrape(context.Background(), Request{
		Company:  "Acme",
		Start:    chrono.NewDate(2020, 1, 1),
		End:      chrono.NewDate(2030, 1, 1),
		Selector: SelectAll,
		Sources:  AllSources,
	})
	require.NoError(t, err)
	require.Len(t, report.Reviews, 1)
	require.Equal(t, TrustRadius, report.Reviews[0].Source)
	require.Nil(t, report.Reviews[0].Date)

	require.Len(t, report.Outcomes, 3)
	require.ErrorIs(t, report.Outcomes[0].Err, ErrCompanyNotFound)
	require.ErrorIs(t, report.Outcomes[1].Err, ErrCompanyNotFound)
	require.NoError(t, report.Outcomes[2].Err)
	require.Equal(t, 1, report.Outcomes[2].Pages)
}

func TestEncodeReportKeepsCharacters(t *testing.T) {
	var out strings.Builder
	err := EncodeReport(&out, Report{
		Company: "Café <Acme> & Co",
		Start:   chrono.NewDate(2023, 1, 1),
		End:     chrono.NewDate(2023, 1, 2),
		Source:  SelectAll,
	})
	require.NoError(t, err)
	require.Equal(t, `{
  "company": "Café <Acme> & Co",
  "start": "2023-01-01",
  "end": "2023-01-02",
  "source": "all",
  "reviews": []
}
`, out.String())
}
