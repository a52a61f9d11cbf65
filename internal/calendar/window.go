// Package calendar generates the rolling window of candidate days the
// booking widget offers for selection.
package calendar

import "time"

// DefaultWindowDays is the length of the rolling window shown to the user.
const DefaultWindowDays = 30

// Day is one candidate date in the window. Values are immutable once
// generated; the window is only rebuilt when the anchor date rolls over.
type Day struct {
	Date     time.Time    `json:"date"`
	Weekday  time.Weekday `json:"weekday"`
	Bookable bool         `json:"bookable"`
}

// ISODate returns the day's date in YYYY-MM-DD form, the identifier the
// HTTP surface and availability cache key on.
func (d Day) ISODate() string {
	return d.Date.Format(time.DateOnly)
}

// Window is an ordered run of days starting at the anchor date.
// LeadingBlanks is the anchor's weekday index (Sunday=0) so a 7-column
// grid can align the first real day under its weekday header; blank
// cells carry layout information only, no Day value.
type Window struct {
	Days          []Day `json:"days"`
	LeadingBlanks int   `json:"leading_blanks"`
}

// Generate builds a window of length days starting at anchor. Weekends
// are never bookable. Pure function of its inputs.
func Generate(anchor time.Time, days int) Window {
	if days <= 0 {
		days = DefaultWindowDays
	}
	start := midnight(anchor)

	w := Window{
		Days:          make([]Day, 0, days),
		LeadingBlanks: int(start.Weekday()),
	}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		w.Days = append(w.Days, Day{
			Date:     date,
			Weekday:  date.Weekday(),
			Bookable: bookable(date.Weekday()),
		})
	}
	return w
}

// DayFor returns the window entry matching the given ISO date.
func (w Window) DayFor(isoDate string) (Day, bool) {
	for _, d := range w.Days {
		if d.ISODate() == isoDate {
			return d, true
		}
	}
	return Day{}, false
}

func bookable(wd time.Weekday) bool {
	return wd != time.Saturday && wd != time.Sunday
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
