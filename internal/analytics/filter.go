package analytics

import (
	"time"

	"github.com/artci/feedback-api/internal/repository/models"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Filter narrows the records an aggregation looks at. Empty fields apply no
// constraint. Dates are ISO calendar dates; values that do not parse are
// ignored rather than rejected.
type Filter struct {
	StartDate string
	EndDate   string
	Type      string
	Provider  string
}

// ParseDate parses an ISO date (or date-time) supplied by a caller. Inputs
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type matcher struct {
	typ, provider    string
	start, end       time.Time
	hasStart, hasEnd bool
}

func (f Filter) compile() matcher {
	m := matcher{typ: f.Type, provider: f.Provider}
	m.start, m.hasStart = ParseDate(f.StartDate)
	if end, ok := ParseDate(f.EndDate); ok {
		// the end date covers its whole day
		m.end, m.hasEnd = end.AddDate(0, 0, 1), true
	}
	return m
}

func (m matcher) match(r models.FeedbackRecord) bool {
	if m.typ != "" && r.Type != m.typ {
		return false
	}
	if m.provider != "" && r.Provider != m.provider {
		return false
	}
	if !r.HasTimestamp() {
		return true
	}
	if m.hasStart && r.CreatedAt.Before(m.start) {
		return false
	}
	if m.hasEnd && r.CreatedAt.After(m.end) {
		return false
	}
	return true
}

// Apply returns the records that satisfy f, in their original order.
func (f Filter) Apply(records []models.FeedbackRecord) []models.FeedbackRecord {
	m := f.compile()
	out := make([]models.FeedbackRecord, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}
