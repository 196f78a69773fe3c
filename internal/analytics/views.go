package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/artci/feedback-api/internal/repository/models"
)

type Summary struct {
	TotalFeedback      int            `json:"total_feedback"`
	ByType             map[string]int `json:"by_type"`
	ByProvider         map[string]int `json:"by_provider"`
	RatingDistribution Distribution   `json:"rating_distribution"`
}

type CriterionStat struct {
	Label        string       `json:"label"`
	Count        int          `json:"count"`
	Avg          float64      `json:"avg"`
	Distribution Distribution `json:"distribution"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type HeatmapCell struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
	Count   int `json:"count"`
}

type CriterionDayPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Avg   float64 `json:"avg"`
}

// SummaryView counts records by type and provider and histograms every sample.
type SummaryView struct {
	total      int
	byType     map[string]int
	byProvider map[string]int
	dist       [4]int
}

func NewSummaryView() *SummaryView {
	return &SummaryView{byType: map[string]int{}, byProvider: map[string]int{}}
}

func (v *SummaryView) wantsSamples() bool { return true }

func (v *SummaryView) observe(rec models.FeedbackRecord, samples []CriterionSample) {
	v.total++
	v.byType[rec.Type]++
	v.byProvider[rec.Provider]++
	for _, s := range samples {
		v.dist[s.Rating-1]++
	}
}

func (v *SummaryView) Result() Summary {
	return Summary{
		TotalFeedback:      v.total,
		ByType:             v.byType,
		ByProvider:         v.byProvider,
		RatingDistribution: newDistribution(v.dist),
	}
}

type criterionTotals struct {
	sum, count int
	dist       [4]int
}

// CriteriaView aggregates samples per criterion label.
type CriteriaView struct {
	byLabel map[string]*criterionTotals
}

func NewCriteriaView() *CriteriaView {
	return &CriteriaView{byLabel: map[string]*criterionTotals{}}
}

func (v *CriteriaView) wantsSamples() bool { return true }

func (v *CriteriaView) observe(_ models.FeedbackRecord, samples []CriterionSample) {
	for _, s := range samples {
		t, ok := v.byLabel[s.Label]
		if !ok {
			t = &criterionTotals{}
			v.byLabel[s.Label] = t
		}
		t.sum += s.Rating
		t.count++
		t.dist[s.Rating-1]++
	}
}

// Result returns one stat per label, sorted by label.
func (v *CriteriaView) Result() []CriterionStat {
	out := make([]CriterionStat, 0, len(v.byLabel))
	for label, t := range v.byLabel {
		out = append(out, CriterionStat{
			Label:        label,
			Count:        t.count,
			Avg:          mean(t.sum, t.count),
			Distribution: newDistribution(t.dist),
		})
	}
	slices.SortFunc(out, func(a, b CriterionStat) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// TimeSeriesView counts timestamped records per calendar day of a window.
type TimeSeriesView struct {
	window  Window
	buckets map[string]int
}

func NewTimeSeriesView(w Window) *TimeSeriesView {
	return &TimeSeriesView{window: w, buckets: map[string]int{}}
}

func (v *TimeSeriesView) wantsSamples() bool { return false }

func (v *TimeSeriesView) observe(rec models.FeedbackRecord, _ []CriterionSample) {
	if !rec.HasTimestamp() {
		return
	}
	day := calendarDay(rec.CreatedAt)
	if v.window.admits(day) {
		v.buckets[day.Format(dateLayout)]++
	}
}

// Result returns exactly one point per window day, zero-filled.
func (v *TimeSeriesView) Result() []TimeSeriesPoint {
	dates := v.window.Dates()
	out := make([]TimeSeriesPoint, len(dates))
	for i, d := range dates {
		out[i] = TimeSeriesPoint{Date: d, Count: v.buckets[d]}
	}
	return out
}

// HeatmapView counts timestamped records per (weekday, hour), Monday = 0,
// read in each timestamp's own location.
type HeatmapView struct {
	grid [7][24]int
}

func NewHeatmapView() *HeatmapView { return &HeatmapView{} }

func (v *HeatmapView) wantsSamples() bool { return false }

func (v *HeatmapView) observe(rec models.FeedbackRecord, _ []CriterionSample) {
	if !rec.HasTimestamp() {
		return
	}
	ts := rec.CreatedAt
	v.grid[mondayWeekday(ts)][ts.Hour()]++
}

// Result returns the dense 7x24 grid, weekday-major.
func (v *HeatmapView) Result() []HeatmapCell {
	out := make([]HeatmapCell, 0, 7*24)
	for wd := range 7 {
		for hr := range 24 {
			out = append(out, HeatmapCell{Weekday: wd, Hour: hr, Count: v.grid[wd][hr]})
		}
	}
	return out
}

func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

type dayLabel struct {
	date, label string
}

// CriteriaOverTimeView averages ratings per (day, label) over a window.
type CriteriaOverTimeView struct {
	window Window
	sums   map[dayLabel]int
	counts map[dayLabel]int
	labels map[string]struct{}
}

func NewCriteriaOverTimeView(w Window) *CriteriaOverTimeView {
	return &CriteriaOverTimeView{
		window: w,
		sums:   map[dayLabel]int{},
		counts: map[dayLabel]int{},
		labels: map[string]struct{}{},
	}
}

func (v *CriteriaOverTimeView) wantsSamples() bool { return true }

func (v *CriteriaOverTimeView) observe(rec models.FeedbackRecord, samples []CriterionSample) {
	if !rec.HasTimestamp() {
		return
	}
	day := calendarDay(rec.CreatedAt)
	if !v.window.admits(day) {
		return
	}
	date := day.Format(dateLayout)
	for _, s := range samples {
		key := dayLabel{date: date, label: s.Label}
		v.sums[key] += s.Rating
		v.counts[key]++
		v.labels[s.Label] = struct{}{}
	}
}

// Result returns the dense window-days x labels grid, date-major with labels
// sorted.
func (v *CriteriaOverTimeView) Result() []CriterionDayPoint {
	labels := make([]string, 0, len(v.labels))
	for l := range v.labels {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	dates := v.window.Dates()
	out := make([]CriterionDayPoint, 0, len(dates)*len(labels))
	for _, d := range dates {
		for _, l := range labels {
			key := dayLabel{date: d, label: l}
			out = append(out, CriterionDayPoint{Date: d, Label: l, Avg: mean(v.sums[key], v.counts[key])})
		}
	}
	return out
}
