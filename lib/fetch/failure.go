package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRenderUnavailable = errors.New("render capability unavailable")
	ErrBlocked           = errors.New("blocked")
)

type Kind int

const (
	KindTransport Kind = iota
	KindBlocked
	KindNotFound
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindBlocked:
		return "blocked"
	case KindNotFound:
		return "not found"
	case KindRender:
		return "render error"
	default:
		return "transport error"
	}
}

// Failure is returned for every url that could not be fetched.
type Failure struct {
	URL    string
	Kind   Kind
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("fetch %s (status %d): %s", f.URL, f.Status, f.Err)
	}
	return fmt.Sprintf("fetch %s: %s", f.URL, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// classify turns a non-success transport response into a failure.
func classify(url string, res Response) *Failure {
	switch res.Status {
	case http.StatusForbidden:
		return &Failure{URL: url, Kind: KindBlocked, Status: res.Status, Err: ErrBlocked}
	case http.StatusNotFound, http.StatusGone:
		return &Failure{URL: url, Kind: KindNotFound, Status: res.Status, Err: errors.New(http.StatusText(res.Status))}
	default:
		text := http.StatusText(res.Status)
		if text == "" {
			text = "unexpected status"
		}
		return &Failure{URL: url, Kind: KindTransport, Status: res.Status, Err: errors.New(text)}
	}
}
