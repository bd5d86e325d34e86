package chrono

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrNoDate = errors.New("no date found")

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// with a day any casing of "may" is a month, on its own only "May" is,
// so "you may 2023" is not a date
const (
	monthPattern     = `((?i:` + monthNames + `|may))\b\.?`
	monthOnlyPattern = `((?i:` + monthNames + `)|May)\b\.?`
)

var (
	// a time of day may follow directly, as in 2023-06-01T09:30:00Z
	isoDate = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})(?:T|\b)`)
	// month first like dateparse, with a two or four digit year
	monthFirst = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{2}|\d{4})\b`)
	namedMDY   = regexp.MustCompile(`\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	namedDMY   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `,?\s+(\d{4})\b`)
	namedMY    = regexp.MustCompile(`\b` + monthOnlyPattern + `,?\s+(\d{4})\b`)
)

const (
	minYear = 1900
	maxYear = 2100
)

type candidate struct {
	pos  int
	text string
}

func group(s string, m []int, i int) string {
	return s[m[2*i]:m[2*i+1]]
}

func pad(n string) string {
	if len(n) == 1 {
		return "0" + n
	}
	return n
}

func month(name string) string {
	return strings.ToLower(name[:3])
}

// candidates returns date-looking substrings of `s` in the order they appear,
// rewritten into a layout dateparse understands.
func candidates(s string) []candidate {
	var out []candidate
	add := func(pos int, text string) {
		out = append(out, candidate{pos: pos, text: text})
	}

	for _, m := range isoDate.FindAllStringSubmatchIndex(s, -1) {
		add(m[0], fmt.Sprintf("%s-%s-%s", group(s, m, 1), pad(group(s, m, 2)), pad(group(s, m, 3))))
	}
	for _, m := range monthFirst.FindAllStringSubmatchIndex(s, -1) {
		add(m[0], fmt.Sprintf("%s/%s/%s", pad(group(s, m, 1)), pad(group(s, m, 2)), group(s, m, 3)))
	}
	for _, m := range namedMDY.FindAllStringSubmatchIndex(s, -1) {
		add(m[0], fmt.Sprintf("%s %s, %s", month(group(s, m, 1)), group(s, m, 2), group(s, m, 3)))
	}
	for _, m := range namedDMY.FindAllStringSubmatchIndex(s, -1) {
		add(m[0], fmt.Sprintf("%s %s, %s", month(group(s, m, 2)), group(s, m, 1), group(s, m, 3)))
	}
	for _, m := range namedMY.FindAllStringSubmatchIndex(s, -1) {
		add(m[0], fmt.Sprintf("%s 1, %s", month(group(s, m, 1)), group(s, m, 2)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].pos < out[j].pos
	})
	return out
}

// parseIn reads day/month swapped dates such as 31/03/2023 as well.
func parseIn(s string) (Date, bool) {
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return Date{}, false
	}
	if t.Year() < minYear || t.Year() > maxYear {
		return Date{}, false
	}
	return DateOf(t), true
}

// ParseFuzzy finds the first calendar date mentioned anywhere in `s`,
// e.g. "Reviewed on June 1st, 2023 by a verified user" or a bare
// timestamp like "2023-06-01T09:30:00Z".
// a month without a day resolves to the first of that month.
func ParseFuzzy(s string) (Date, error) {
	s = strings.TrimSpace(s)
	found := candidates(s)
	// dateparse alone reads bare numbers as years or unix timestamps
	if len(found) == 0 {
		return Date{}, fmt.Errorf("%w in %q", ErrNoDate, s)
	}
	for _, c := range found {
		if d, ok := parseIn(c.text); ok {
			return d, nil
		}
	}
	// layouts the scanner does not know, as long as they look like a date
	if d, ok := parseIn(s); ok {
		return d, nil
	}
	return Date{}, fmt.Errorf("%w in %q", ErrNoDate, s)
}

// Parse is the lenient parser for user input: any layout dateparse
// recognizes, falling back to ParseFuzzy.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrNoDate
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err == nil {
		return DateOf(t), nil
	}
	d, fuzzyErr := ParseFuzzy(s)
	if fuzzyErr != nil {
		return Date{}, fmt.Errorf("invalid date: %s", s)
	}
	return d, nil
}
