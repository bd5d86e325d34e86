package reviewstore

import (
	"context"
	"testing"
	"time"

	"reviewscrape/lib/chrono"
	"reviewscrape/lib/scrapers/reviews"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()
	store.now = func() time.Time {
		return time.Unix(1700000000, 0)
	}

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Empty(t, runs)

	date := chrono.NewDate(2023, 6, 1)
	rating := "4/5"
	saved := []reviews.Review{
		{
			Title:       "Great tool",
			Description: "Our whole team relies on it every single day without issues.",
			Date:        &date,
			Source:      reviews.Capterra,
			Additional:  reviews.Additional{Rating: &rating},
		},
		{
			Title:       "Undated",
			Description: "Nobody could tell when this one was written, it is kept anyway.",
			Source:      reviews.G2,
		},
	}

	first, err := store.Save(ctx, reviews.Report{
		Company: "Acme Corp",
		Start:   chrono.NewDate(2023, 1, 1),
		End:     chrono.NewDate(2023, 12, 31),
		Source:  reviews.SelectAll,
		Reviews: saved,
	})
	require.NoError(t, err)
	second, err := store.Save(ctx, reviews.Report{
		Company: "Empty Inc",
		Start:   chrono.NewDate(2022, 1, 1),
		End:     chrono.NewDate(2022, 1, 31),
		Source:  "g2",
		Reviews: []reviews.Review{},
	})
	require.NoError(t, err)
	require.Greater(t, second, first)

	runs, err = store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "Empty Inc", runs[0].Company)
	require.Equal(t, 0, runs[0].ReviewCount)
	require.Equal(t, "Acme Corp", runs[1].Company)
	require.Equal(t, reviews.SelectAll, runs[1].Source)
	require.Equal(t, "2023-01-01", runs[1].Start.String())
	require.Equal(t, "2023-12-31", runs[1].End.String())
	require.Equal(t, 2, runs[1].ReviewCount)
	require.Equal(t, int64(1700000000), runs[1].CreatedAt.Unix())

	loaded, err := store.Reviews(ctx, first)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(saved, loaded, cmp.Comparer(func(a, b chrono.Date) bool {
		return a.String() == b.String()
	})))
}
