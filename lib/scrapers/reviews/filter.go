package reviews

import "reviewscrape/lib/chrono"

// Dedupe keeps the first review for every description, in order.
// reviews without a description are dropped.
func Dedupe(reviews []Review) []Review {
	out := []Review{}
	seen := map[string]struct{}{}
	for _, r := range reviews {
		if r.Description == "" {
			continue
		}
		if _, ok := seen[r.Description]; ok {
			continue
		}
		seen[r.Description] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FilterByDate keeps reviews dated within [start, end] as well as every
// review whose date could not be determined.
func FilterByDate(reviews []Review, start, end chrono.Date) []Review {
	out := []Review{}
	for _, r := range reviews {
		if r.Date == nil || r.Date.Within(start, end) {
			out = append(out, r)
		}
	}
	return out
}
