package analytics

import "time"

const (
	DefaultWindowDays = 30
	// MaxWindowDays bounds the dense grids built for a window.
	MaxWindowDays = 3650
)

// Window is a run of consecutive calendar days ending near a reference
// instant. It starts the day after since, where since = now - days.
type Window struct {
	since time.Time
	days  int
}

// NewWindow anchors a window of days days to now. days is clamped to
// [1, MaxWindowDays].
func NewWindow(now time.Time, days int) Window {
	days = max(1, min(days, MaxWindowDays))
	since := now.UTC().AddDate(0, 0, -days)
	return Window{since: calendarDay(since), days: days}
}

// Len returns the number of days in the window.
func (w Window) Len() int { return w.days }

// Dates returns the ISO date of every day in the window, oldest first.
func (w Window) Dates() []string {
	out := make([]string, w.days)
	for i := range out {
		out[i] = w.since.AddDate(0, 0, i+1).Format(dateLayout)
	}
	return out
}

// admits reports whether a calendar day is on or after the since date.
func (w Window) admits(day time.Time) bool {
	return !day.Before(w.since)
}

// calendarDay returns t's calendar date, read in t's own location, as
// midnight UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
