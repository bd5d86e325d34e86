package reviews

import (
	"context"
	"errors"
	"strings"

	"reviewscrape/lib/fetch"

	"github.com/PuerkitoBio/goquery"
)

// fakeFetcher serves pages from memory, every other url is a 404.
type fakeFetcher struct {
	pages map[string]string
	fail  map[string]error
	calls []string
	hints []bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, hint bool) (string, error) {
	f.calls = append(f.calls, url)
	f.hints = append(f.hints, hint)
	if err, ok := f.fail[url]; ok {
		return "", err
	}
	body, ok := f.pages[url]
	if !ok {
		return "", &fetch.Failure{URL: url, Kind: fetch.KindNotFound, Status: 404, Err: errors.New("Not Found")}
	}
	return body, nil
}

func mustDocument(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}
