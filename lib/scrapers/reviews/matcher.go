package reviews

import (
	"strings"

	"reviewscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Matcher is one heuristic for pulling a link out of a page.
type Matcher interface {
	Match(doc *goquery.Document) (string, bool)
}

type MatcherFunc func(doc *goquery.Document) (string, bool)

func (f MatcherFunc) Match(doc *goquery.Document) (string, bool) {
	return f(doc)
}

// FirstMatch applies the matchers in order and returns the first result.
func FirstMatch(doc *goquery.Document, matchers []Matcher) (string, bool) {
	for _, m := range matchers {
		href, ok := m.Match(doc)
		if ok {
			return href, true
		}
	}
	return "", false
}

// HrefMatcher matches the first anchor, in document order, whose href satisfies `pred`.
func HrefMatcher(pred func(href string) bool) Matcher {
	return MatcherFunc(func(doc *goquery.Document) (string, bool) {
		var found string
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := a.AttrOr("href", "")
			if pred(href) {
				found = href
				return false
			}
			return true
		})
		return found, found != ""
	})
}

// AnchorTextMatcher looks at the first anchor whose text contains `text`
// (case-insensitive) and matches if that anchor has an href.
func AnchorTextMatcher(text string) Matcher {
	text = strings.ToLower(text)
	return MatcherFunc(func(doc *goquery.Document) (string, bool) {
		anchor := doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(htmlutil.Text(a, " ")), text)
		}).First()
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		return href, href != ""
	})
}

// LinkRelMatcher matches the href of the first <link> with `rel` among its rel values.
func LinkRelMatcher(rel string) Matcher {
	return SelectorMatcher("link[rel~=" + rel + "]")
}

// SelectorMatcher matches the href of the first element matching `selector`.
func SelectorMatcher(selector string) Matcher {
	return MatcherFunc(func(doc *goquery.Document) (string, bool) {
		href := strings.TrimSpace(doc.Find(selector).First().AttrOr("href", ""))
		return href, href != ""
	})
}
