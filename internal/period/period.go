// Package period resolves a (month, year) selector into the calendar range it
// covers.
package period

import (
	"strconv"
	"strings"
	"time"
)

// MinYear is the earliest year a budget or period query may name.
const MinYear = 2020

// Period is one calendar month and the inclusive instant range it spans.
type Period struct {
	Month int       `json:"month"`
	Year  int       `json:"year"`
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Resolve builds the period for month/year in loc. A zero month or year takes
// the corresponding component of now. Month values outside 1..12 are
// normalized by time.Date; callers validate ranges beforehand.
func Resolve(month, year int, now time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, loc)
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 999999999, loc)

	return Period{
		Month: int(start.Month()),
		Year:  start.Year(),
		Start: start,
		End:   end,
	}
}

// Current returns the period containing now.
func Current(now time.Time, loc *time.Location) Period {
	return Resolve(0, 0, now, loc)
}

// Parse resolves raw query-string values. Blank or non-numeric values fall
// back to the current period's component.
func Parse(rawMonth, rawYear string, now time.Time, loc *time.Location) Period {
	return Resolve(parseInt(rawMonth), parseInt(rawYear), now, loc)
}

// ParseValid is Parse that also reports whether the resulting period is
// within range. An explicit month outside 1..12 is invalid rather than
// normalized into a neighbouring year.
func ParseValid(rawMonth, rawYear string, now time.Time, loc *time.Location) (Period, bool) {
	month := parseInt(rawMonth)
	p := Resolve(month, parseInt(rawYear), now, loc)
	if month < 0 || month > 12 {
		return p, false
	}
	return p, Valid(p.Month, p.Year)
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Contains reports whether t falls inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Valid reports whether month and year are within the accepted ranges.
func Valid(month, year int) bool {
	return month >= 1 && month <= 12 && year >= MinYear
}

// MonthName returns the English name of the period's month.
func (p Period) MonthName() string {
	return time.Month(p.Month).String()
}
