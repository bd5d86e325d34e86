package htmlutil

import (
	"context"
	"net/url"
	"strings"

	"reviewscrape/lib/telemetry"
	"reviewscrape/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tracer = telemetry.Tracer("reviewscrape.lib.htmlutil")

// elements whose text never reaches the reader
var invisible = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// TextNodes returns the contents of every visible text node under `nodes`
// in document order, untouched.
func TextNodes(nodes ...*html.Node) []string {
	var out []string
	for _, n := range nodes {
		collectText(n, &out)
	}
	return out
}

func collectText(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		*out = append(*out, node.Data)
		return
	case html.ElementNode:
		if invisible[node.DataAtom] {
			return
		}
	case html.CommentNode:
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, out)
	}
}

// Text joins the visible text nodes of `sel` with `sep`. every node is
// trimmed and has its inner whitespace collapsed, empty nodes are dropped.
func Text(sel *goquery.Selection, sep string) string {
	parts := []string{}
	for _, t := range TextNodes(sel.Nodes...) {
		t = textutil.CollapseWhitespace(t)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, sep)
}

// Tokens joins every text node of `sel` with `sep`, splits the result on
// `sep` again after trimming and returns the trimmed pieces. text that
// itself contains `sep` is split as well.
func Tokens(sel *goquery.Selection, sep string) []string {
	joined := strings.Join(TextNodes(sel.Nodes...), " "+sep+" ")
	pieces := strings.Split(joined, sep)
	for i, p := range pieces {
		pieces[i] = strings.TrimSpace(p)
	}
	return pieces
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors returns every anchor in `sel` that carries an href attribute,
// in document order.
func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		anchors = append(anchors, Anchor{
			Name: Text(a, " "),
			Href: href,
		})
	})
	span.SetAttributes(attribute.Int("anchors", len(anchors)))
	return anchors
}

// Resolve resolves `href` against `base` the way a browser would.
func Resolve(ctx context.Context, base, href string) (string, error) {
	span := trace.SpanFromContext(ctx)

	baseUrl, err := url.Parse(base)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return baseUrl.ResolveReference(ref).String(), nil
}
