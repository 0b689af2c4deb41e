package calendar

import (
	"errors"
	"time"

	"github.com/banachtech/g2calib/model"
)

// Layout is the ISO date format used for evaluation and schedule dates.
const Layout = "2006-01-02"

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// TARGET is the euro settlement calendar, defined from 1999.
	TARGET CalendarID = "TARGET"
	// WeekendsOnly has no holidays.
	WeekendsOnly CalendarID = "WEEKENDS"
)

// Lookup resolves a calendar name; the empty name selects TARGET.
func Lookup(name string) (CalendarID, error) {
	switch CalendarID(name) {
	case "", TARGET:
		return TARGET, nil
	case WeekendsOnly:
		return WeekendsOnly, nil
	}
	return "", model.NewInvalidInputError("calendar", "name", 0, "unknown calendar "+name)
}

// ParseDate parses an ISO date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("evaluation date is required")
	}
	return time.Parse(Layout, s)
}

// isHoliday applies the TARGET rules in force for the year of t: 1 January and
// 25 December always; 31 December in 1998, 1999 and 2001; Good Friday, Easter
// Monday, 1 May and 26 December from 2000.
func isHoliday(cal CalendarID, t time.Time) bool {
	if cal != TARGET {
		return false
	}
	y, m, d := t.Date()
	switch {
	case m == time.January && d == 1,
		m == time.December && d == 25:
		return true
	case m == time.December && d == 31:
		return y == 1998 || y == 1999 || y == 2001
	}
	if y < 2000 {
		return false
	}
	if m == time.May && d == 1 || m == time.December && d == 26 {
		return true
	}
	easter := easterSunday(y)
	return t.Equal(easter.AddDate(0, 0, -2)) || t.Equal(easter.AddDate(0, 0, 1))
}

// easterSunday returns Western Easter for year y (anonymous Gregorian algorithm).
func easterSunday(y int) time.Time {
	a := y % 19
	b, c := y/100, y%100
	d, e := b/4, b%4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i, k := c/4, c%4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// IsWeekday reports whether d falls Monday to Friday.
func IsWeekday(d time.Time) bool {
	return d.Weekday() > 0 && d.Weekday() < 6
}

// IsBusinessDay checks weekends and holidays.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	return IsWeekday(t) && !isHoliday(cal, t)
}

// AdjustFollowing rolls forward to the next business day.
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	adjusted := AdjustFollowing(cal, t)
	if adjusted.Month() == t.Month() {
		return adjusted
	}
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// SwaptionDates returns the exercise date and underlying swap maturity of a
// swaption starting startYears after the evaluation date on a swap of
// lengthYears. Both dates are Modified Following adjusted.
func SwaptionDates(cal CalendarID, evaluation time.Time, startYears, lengthYears int) (expiry, maturity time.Time) {
	expiry = Adjust(cal, evaluation.AddDate(startYears, 0, 0))
	maturity = Adjust(cal, expiry.AddDate(lengthYears, 0, 0))
	return expiry, maturity
}
