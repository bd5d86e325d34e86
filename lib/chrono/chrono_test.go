package chrono

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFuzzy(t *testing.T) {
	cases := []struct {
		text     string
		expected Date
	}{
		{"2023-06-01", NewDate(2023, time.June, 1)},
		{"2023-6-1", NewDate(2023, time.June, 1)},
		{"Posted 2023/06/01 10:00", NewDate(2023, time.June, 1)},
		{"06/01/2023", NewDate(2023, time.June, 1)},
		{"Reviewed on June 1st, 2023 by a verified user", NewDate(2023, time.June, 1)},
		{"Jun 1, 2023", NewDate(2023, time.June, 1)},
		{"Sept. 14 2022", NewDate(2022, time.September, 14)},
		{"14 September 2022", NewDate(2022, time.September, 14)},
		{"the 3rd of March, 2021", NewDate(2021, time.March, 3)},
		{"Used the software for: December 2020", NewDate(2020, time.December, 1)},
		{"written 2022-01-05, updated 2023-02-01", NewDate(2022, time.January, 5)},
		{"2023-06-01T09:30:00Z", NewDate(2023, time.June, 1)},
		{"2022-01-01T00:00:00+00:00", NewDate(2022, time.January, 1)},
		{"Posted 2023-06-01T09:30:00.000Z", NewDate(2023, time.June, 1)},
		{"2023.06.01", NewDate(2023, time.June, 1)},
		{"06.01.2023", NewDate(2023, time.June, 1)},
		{"31.03.2022", NewDate(2022, time.March, 31)},
		{"Reviewed 06/01/23", NewDate(2023, time.June, 1)},
		{"Reviewed 31/03/2022", NewDate(2022, time.March, 31)},
		{"May 2023", NewDate(2023, time.May, 1)},
		{"may 5, 2023", NewDate(2023, time.May, 5)},
	}
	for _, test := range cases {
		d, err := ParseFuzzy(test.text)
		require.NoError(t, err, test.text)
		require.Equal(t, test.expected, d, test.text)
	}
}

func TestParseFuzzyRejects(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"Great tool",
		"4.5/5",
		"Rating 5 out of 5",
		"Marketing team of 2023 people",
		"2023-02-30",
		"you may 2023 find it useful",
		"2014",
		"1332151919",
		"Helpful (12)",
	} {
		_, err := ParseFuzzy(text)
		require.ErrorIs(t, err, ErrNoDate, text)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2023-01-01")
	require.NoError(t, err)
	require.Equal(t, NewDate(2023, time.January, 1), d)

	d, err = Parse("March 5, 2024")
	require.NoError(t, err)
	require.Equal(t, NewDate(2024, time.March, 5), d)

	_, err = Parse("not a date")
	require.Error(t, err)
}

func TestWithin(t *testing.T) {
	start := NewDate(2023, time.January, 1)
	end := NewDate(2023, time.December, 31)

	require.True(t, start.Within(start, end))
	require.True(t, end.Within(start, end))
	require.True(t, NewDate(2023, time.June, 1).Within(start, end))
	require.False(t, NewDate(2022, time.December, 31).Within(start, end))
	require.False(t, NewDate(2024, time.January, 1).Within(start, end))
}

func TestDateJSON(t *testing.T) {
	type record struct {
		Date *Date `json:"date"`
	}
	d := NewDate(2023, time.June, 1)

	out, err := json.Marshal(record{Date: &d})
	require.NoError(t, err)
	require.JSONEq(t, `{"date": "2023-06-01"}`, string(out))

	out, err = json.Marshal(record{})
	require.NoError(t, err)
	require.JSONEq(t, `{"date": null}`, string(out))

	var decoded record
	require.NoError(t, json.Unmarshal([]byte(`{"date": "2022-01-01"}`), &decoded))
	require.Equal(t, NewDate(2022, time.January, 1), *decoded.Date)
}
