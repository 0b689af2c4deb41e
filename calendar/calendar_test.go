package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	d, err := time.Parse(Layout, s)
	require.NoError(t, err)
	return d
}

func TestEasterSunday(t *testing.T) {
	for year, want := range map[int]string{
		2002: "2002-03-31",
		2019: "2019-04-21",
		2024: "2024-03-31",
		2025: "2025-04-20",
	} {
		require.Equal(t, date(t, want), easterSunday(year), "year %d", year)
	}
}

func TestIsBusinessDay(t *testing.T) {
	type testCases struct {
		name string
		cal  CalendarID
		date string
		want bool
	}

	for _, test := range []testCases{
		{name: "WEEKDAY", cal: TARGET, date: "2002-02-15", want: true},
		{name: "SATURDAY", cal: TARGET, date: "2002-02-16", want: false},
		{name: "NEW_YEAR", cal: TARGET, date: "2003-01-01", want: false},
		{name: "GOOD_FRIDAY", cal: TARGET, date: "2002-03-29", want: false},
		{name: "EASTER_MONDAY", cal: TARGET, date: "2002-04-01", want: false},
		{name: "LABOUR_DAY", cal: TARGET, date: "2002-05-01", want: false},
		{name: "BOXING_DAY", cal: TARGET, date: "2002-12-26", want: false},
		{name: "WEEKENDS_ONLY_HOLIDAY", cal: WeekendsOnly, date: "2002-12-26", want: true},
		{name: "YEAR_END_1999", cal: TARGET, date: "1999-12-31", want: false},
		{name: "YEAR_END_2001", cal: TARGET, date: "2001-12-31", want: false},
		{name: "YEAR_END_2002", cal: TARGET, date: "2002-12-31", want: true},
		{name: "GOOD_FRIDAY_1999", cal: TARGET, date: "1999-04-02", want: true},
		{name: "EASTER_MONDAY_1999", cal: TARGET, date: "1999-04-05", want: true},
		{name: "LABOUR_DAY_2000", cal: TARGET, date: "2000-05-01", want: false},
		{name: "BOXING_DAY_1997", cal: TARGET, date: "1997-12-26", want: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, IsBusinessDay(test.cal, date(t, test.date)))
		})
	}
}

func TestAdjust(t *testing.T) {
	// 2002-08-31 is a Saturday; Following leaves the month, Modified Following does not.
	require.Equal(t, date(t, "2002-09-02"), AdjustFollowing(TARGET, date(t, "2002-08-31")))
	require.Equal(t, date(t, "2002-08-30"), Adjust(TARGET, date(t, "2002-08-31")))
	require.Equal(t, date(t, "2002-02-18"), Adjust(TARGET, date(t, "2002-02-16")))
}

func TestSwaptionDates(t *testing.T) {
	eval := date(t, "2002-02-15")
	expiry, maturity := SwaptionDates(TARGET, eval, 1, 5)
	require.Equal(t, date(t, "2003-02-17"), expiry)
	require.Equal(t, date(t, "2008-02-18"), maturity)

	for start := 1; start <= 5; start++ {
		expiry, maturity := SwaptionDates(TARGET, eval, start, 6-start)
		require.True(t, IsBusinessDay(TARGET, expiry))
		require.True(t, IsBusinessDay(TARGET, maturity))
		require.True(t, maturity.After(expiry))
	}
}

func TestLookup(t *testing.T) {
	cal, err := Lookup("")
	require.NoError(t, err)
	require.Equal(t, TARGET, cal)

	cal, err = Lookup("WEEKENDS")
	require.NoError(t, err)
	require.Equal(t, WeekendsOnly, cal)

	_, err = Lookup("NYSE")
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("")
	require.Error(t, err)
	d, err := ParseDate("2002-02-15")
	require.NoError(t, err)
	require.Equal(t, time.February, d.Month())
}
