package analytics

import (
	"time"

	"github.com/artci/feedback-api/internal/repository/models"
)

// Dashboard bundles every view, computed in a single scan.
type Dashboard struct {
	Summary          Summary             `json:"summary"`
	Criteria         []CriterionStat     `json:"criteria"`
	TimeSeries       []TimeSeriesPoint   `json:"time_series"`
	Heatmap          []HeatmapCell       `json:"heatmap"`
	CriteriaOverTime []CriterionDayPoint `json:"criteria_over_time"`
}

func BuildSummary(records []models.FeedbackRecord, f Filter) Summary {
	v := NewSummaryView()
	Scan(records, f, v)
	return v.Result()
}

func BuildCriteria(records []models.FeedbackRecord, f Filter) []CriterionStat {
	v := NewCriteriaView()
	Scan(records, f, v)
	return v.Result()
}

func BuildTimeSeries(records []models.FeedbackRecord, f Filter, now time.Time, days int) []TimeSeriesPoint {
	v := NewTimeSeriesView(NewWindow(now, days))
	Scan(records, f, v)
	return v.Result()
}

func BuildHeatmap(records []models.FeedbackRecord, f Filter) []HeatmapCell {
	v := NewHeatmapView()
	Scan(records, f, v)
	return v.Result()
}

func BuildCriteriaOverTime(records []models.FeedbackRecord, f Filter, now time.Time, days int) []CriterionDayPoint {
	v := NewCriteriaOverTimeView(NewWindow(now, days))
	Scan(records, f, v)
	return v.Result()
}

// BuildDashboard computes all views over one pass; both windowed views share
// the same window.
func BuildDashboard(records []models.FeedbackRecord, f Filter, now time.Time, days int) Dashboard {
	w := NewWindow(now, days)
	summary := NewSummaryView()
	criteria := NewCriteriaView()
	series := NewTimeSeriesView(w)
	heatmap := NewHeatmapView()
	overTime := NewCriteriaOverTimeView(w)

	Scan(records, f, summary, criteria, series, heatmap, overTime)

	return Dashboard{
		Summary:          summary.Result(),
		Criteria:         criteria.Result(),
		TimeSeries:       series.Result(),
		Heatmap:          heatmap.Result(),
		CriteriaOverTime: overTime.Result(),
	}
}
