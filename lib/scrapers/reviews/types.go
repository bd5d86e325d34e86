package reviews

import (
	"errors"
	"fmt"
	"strings"

	"reviewscrape/lib/chrono"
)

type Source string

const (
	G2          Source = "g2"
	Capterra    Source = "capterra"
	TrustRadius Source = "trustradius"
)

const SelectAll = "all"

// AllSources is also the order sources are scraped in.
var AllSources = []Source{G2, Capterra, TrustRadius}

// ParseSelector turns the --source value into the sources to scrape.
func ParseSelector(selector string) ([]Source, error) {
	selector = strings.ToLower(strings.TrimSpace(selector))
	if selector == SelectAll {
		return append([]Source(nil), AllSources...), nil
	}
	for _, s := range AllSources {
		if string(s) == selector {
			return []Source{s}, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q, expected one of g2, capterra, trustradius, all", selector)
}

type Additional struct {
	Rating *string `json:"rating"`
	// no heuristic fills this in yet
	Reviewer *string `json:"reviewer"`
}

// Review is identified by its Description, two reviews with the same
// description text are the same review.
type Review struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        *chrono.Date `json:"date"`
	Source      Source       `json:"source"`
	Additional  Additional   `json:"additional"`
}

type Request struct {
	Company string
	Start   chrono.Date
	End     chrono.Date
	// the raw --source value, echoed back in the report
	Selector string
	Sources  []Source
	// ask for a rendered page whenever a plain fetch fails
	RenderHint bool
}

var ErrInvalidRange = errors.New("start date is after end date")

func (r Request) Validate() error {
	if strings.TrimSpace(r.Company) == "" {
		return errors.New("company must not be empty")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("start and end dates are required")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.Start, r.End)
	}
	if len(r.Sources) == 0 {
		return errors.New("no sources requested")
	}
	return nil
}

// SourceOutcome records what happened to one source during a run.
type SourceOutcome struct {
	Source  Source
	URL     string
	Pages   int
	Reviews int
	Err     error
}

type Report struct {
	Company string      `json:"company"`
	Start   chrono.Date `json:"start"`
	End     chrono.Date `json:"end"`
	Source  string      `json:"source"`
	Reviews []Review    `json:"reviews"`

	Outcomes []SourceOutcome `json:"-"`
}
