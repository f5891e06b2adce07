// Package exclusion decides whether a date falls inside a blackout window.
package exclusion

import (
	"time"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type Match struct {
	Excluded bool
	Period   *models.ExclusionPeriod
}

// IsExcluded returns the first period, in the given order, that contains the
// calendar date of at. Comparison uses the year/month/day of at in its own
// location; period dates are read as calendar dates.
func IsExcluded(at time.Time, periods []models.ExclusionPeriod) Match {
	day := dateOf(at)
	for i := range periods {
		if contains(periods[i], day) {
			return Match{Excluded: true, Period: &periods[i]}
		}
	}
	return Match{}
}

func contains(p models.ExclusionPeriod, day date) bool {
	start, end := dateOf(p.StartDate), dateOf(p.EndDate)
	if !p.IsRecurring {
		return !day.before(start) && !day.after(end)
	}

	start = anchor(start, day.year)
	end = anchor(end, day.year)
	if end.before(start) {
		// spans new year, e.g. Dec 20 -> Jan 5
		return !day.before(start) || !day.after(end)
	}
	return !day.before(start) && !day.after(end)
}

type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

// anchor moves d onto year. Feb 29 becomes Feb 28 in non-leap years.
func anchor(d date, year int) date {
	out := date{year: year, month: d.month, day: d.day}
	if last := daysIn(d.month, year); out.day > last {
		out.day = last
	}
	return out
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d date) cmp(o date) int {
	switch {
	case d.year != o.year:
		return d.year - o.year
	case d.month != o.month:
		return int(d.month) - int(o.month)
	default:
		return d.day - o.day
	}
}

func (d date) before(o date) bool { return d.cmp(o) < 0 }
func (d date) after(o date) bool  { return d.cmp(o) > 0 }
