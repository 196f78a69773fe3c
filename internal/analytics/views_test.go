package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rated(id int64, typ, provider string, ts time.Time, ratings string) models.FeedbackRecord {
	return models.FeedbackRecord{ID: id, Type: typ, Provider: provider, Ratings: json.RawMessage(ratings), CreatedAt: ts}
}

var refNow = time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

func TestBuildSummary(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		records := []models.FeedbackRecord{
			rated(1, "mobile", "Orange", time.Time{}, `[{"c1":{"label":"Speed","rating":"3"}}]`),
			rated(2, "fixe", "MTN", time.Time{}, `[{"c1":{"label":"Speed","rating":"1"}}]`),
		}

		s := BuildSummary(records, Filter{})

		assert.Equal(t, 2, s.TotalFeedback)
		assert.Equal(t, map[string]int{"mobile": 1, "fixe": 1}, s.ByType)
		assert.Equal(t, map[string]int{"Orange": 1, "MTN": 1}, s.ByProvider)
		assert.Equal(t, Distribution{"1": 1, "2": 0, "3": 1, "4": 0}, s.RatingDistribution)
	})

	t.Run("histogram counts every valid sample", func(t *testing.T) {
		records := []models.FeedbackRecord{
			rated(1, "mobile", "A", refNow, `[{"a":{"label":"Speed","rating":"4"},"b":{"label":"Price","rating":"4"}},{"_meta":{"comments":"hi"}}]`),
			rated(2, "mobile", "A", refNow, `[{"a":{"label":"Speed","rating":"9"}},{"b":{"label":"","rating":"2"}},{"c":{"label":"Coverage","rating":"2"}}]`),
			rated(3, "fixe", "", refNow, `not json`),
		}

		s := BuildSummary(records, Filter{})

		assert.Equal(t, 3, s.TotalFeedback)
		assert.Equal(t, 3, s.RatingDistribution.Total())
		assert.Equal(t, Distribution{"1": 0, "2": 1, "3": 0, "4": 2}, s.RatingDistribution)
		assert.Equal(t, 1, s.ByProvider[""])
	})

	t.Run("filter matching nothing yields an empty summary", func(t *testing.T) {
		records := []models.FeedbackRecord{
			rated(1, "mobile", "A", refNow, `[{"a":{"label":"Speed","rating":"4"}}]`),
		}

		s := BuildSummary(records, Filter{Provider: "Nobody"})

		assert.Equal(t, 0, s.TotalFeedback)
		assert.Empty(t, s.ByType)
		assert.Empty(t, s.ByProvider)
		assert.Equal(t, Distribution{"1": 0, "2": 0, "3": 0, "4": 0}, s.RatingDistribution)
	})
}

func TestBuildCriteria(t *testing.T) {
	records := []models.FeedbackRecord{
		rated(1, "mobile", "A", refNow, `[{"a":{"label":"Speed","rating":"1"},"b":{"label":"Coverage","rating":"4"}}]`),
		rated(2, "mobile", "A", refNow, `[{"a":{"label":"Speed","rating":"2"}}]`),
		rated(3, "fixe", "B", refNow, `[{"a":{"label":"Speed","rating":"2"}},{"b":{"label":"Billing","rating":"3"}}]`),
	}

	stats := BuildCriteria(records, Filter{})

	require.Len(t, stats, 3)
	assert.Equal(t, []string{"Billing", "Coverage", "Speed"}, []string{stats[0].Label, stats[1].Label, stats[2].Label})

	speed := stats[2]
	assert.Equal(t, 3, speed.Count)
	assert.Equal(t, 1.67, speed.Avg)
	assert.Equal(t, Distribution{"1": 1, "2": 2, "3": 0, "4": 0}, speed.Distribution)

	assert.Equal(t, 4.0, stats[1].Avg)
	assert.Equal(t, 1, stats[0].Count)

	t.Run("type filter", func(t *testing.T) {
		stats := BuildCriteria(records, Filter{Type: "fixe"})
		require.Len(t, stats, 2)
		assert.Equal(t, "Billing", stats[0].Label)
		assert.Equal(t, 2.0, stats[1].Avg)
	})

	t.Run("no data", func(t *testing.T) {
		assert.Empty(t, BuildCriteria(nil, Filter{}))
	})
}

func TestBuildTimeSeries(t *testing.T) {
	records := []models.FeedbackRecord{
		rated(1, "mobile", "A", time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC), `[]`),
		rated(2, "mobile", "A", time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC), `[]`),
		rated(3, "mobile", "A", time.Date(2025, 1, 8, 0, 30, 0, 0, time.UTC), `[]`),
		rated(4, "fixe", "A", time.Date(2025, 1, 8, 22, 0, 0, 0, time.UTC), `[]`),
		rated(5, "mobile", "A", time.Date(2025, 1, 10, 14, 59, 0, 0, time.UTC), `[]`),
		rated(6, "mobile", "A", time.Time{}, `[]`),
	}

	t.Run("window starts the day after since", func(t *testing.T) {
		points := BuildTimeSeries(records, Filter{}, refNow, 3)

		assert.Equal(t, []TimeSeriesPoint{
			{Date: "2025-01-08", Count: 2},
			{Date: "2025-01-09", Count: 0},
			{Date: "2025-01-10", Count: 1},
		}, points)
	})

	t.Run("filtered", func(t *testing.T) {
		points := BuildTimeSeries(records, Filter{Type: "fixe"}, refNow, 3)
		assert.Equal(t, 1, points[0].Count)
		assert.Equal(t, 0, points[2].Count)
	})

	t.Run("empty input still yields every day", func(t *testing.T) {
		points := BuildTimeSeries(nil, Filter{}, refNow, 30)
		require.Len(t, points, 30)
		assert.Equal(t, "2024-12-12", points[0].Date)
		assert.Equal(t, "2025-01-10", points[29].Date)
		for _, p := range points {
			assert.Zero(t, p.Count)
		}
	})

	t.Run("days below one clamp to one", func(t *testing.T) {
		for _, days := range []int{0, -5} {
			points := BuildTimeSeries(records, Filter{}, refNow, days)
			assert.Equal(t, []TimeSeriesPoint{{Date: "2025-01-10", Count: 1}}, points)
		}
	})

	t.Run("record day read in its own zone", func(t *testing.T) {
		abidjanPlus := time.FixedZone("UTC+3", 3*3600)
		r := rated(7, "mobile", "A", time.Date(2025, 1, 9, 1, 0, 0, 0, abidjanPlus), `[]`)
		points := BuildTimeSeries([]models.FeedbackRecord{r}, Filter{}, refNow, 3)
		assert.Equal(t, 1, points[1].Count)
	})
}

func TestBuildHeatmap(t *testing.T) {
	monday := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	sundayLate := time.Date(2025, 1, 12, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))

	records := []models.FeedbackRecord{
		rated(1, "mobile", "A", monday, `[]`),
		rated(2, "mobile", "A", monday.Add(10*time.Minute), `[]`),
		rated(3, "mobile", "A", sundayLate, `[]`),
		rated(4, "mobile", "A", time.Time{}, `[]`),
	}

	cells := BuildHeatmap(records, Filter{})

	require.Len(t, cells, 168)
	seen := map[[2]int]bool{}
	total := 0
	for i, c := range cells {
		assert.Equal(t, i/24, c.Weekday)
		assert.Equal(t, i%24, c.Hour)
		seen[[2]int{c.Weekday, c.Hour}] = true
		total += c.Count
	}
	assert.Len(t, seen, 168)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, cells[0*24+9].Count)
	assert.Equal(t, 1, cells[6*24+23].Count)

	t.Run("empty", func(t *testing.T) {
		cells := BuildHeatmap(nil, Filter{})
		require.Len(t, cells, 168)
		for _, c := range cells {
			assert.Zero(t, c.Count)
		}
	})
}

func TestBuildCriteriaOverTime(t *testing.T) {
	records := []models.FeedbackRecord{
		rated(1, "mobile", "A", time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC), `[{"a":{"label":"Speed","rating":"4"},"b":{"label":"Coverage","rating":"1"}}]`),
		rated(2, "mobile", "A", time.Date(2025, 1, 9, 18, 0, 0, 0, time.UTC), `[{"a":{"label":"Speed","rating":"3"}}]`),
		rated(3, "mobile", "A", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), `[{"a":{"label":"Speed","rating":"1"}}]`),
		rated(4, "mobile", "A", time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC), `[{"a":{"label":"Legacy","rating":"2"}}]`),
		rated(5, "mobile", "A", time.Time{}, `[{"a":{"label":"Untimed","rating":"2"}}]`),
	}

	points := BuildCriteriaOverTime(records, Filter{}, refNow, 2)

	assert.Equal(t, []CriterionDayPoint{
		{Date: "2025-01-09", Label: "Coverage", Avg: 1},
		{Date: "2025-01-09", Label: "Speed", Avg: 3.5},
		{Date: "2025-01-10", Label: "Coverage", Avg: 0},
		{Date: "2025-01-10", Label: "Speed", Avg: 1},
	}, points)

	t.Run("labels come only from windowed data", func(t *testing.T) {
		for _, p := range points {
			assert.NotEqual(t, "Legacy", p.Label)
			assert.NotEqual(t, "Untimed", p.Label)
		}
	})

	t.Run("no labels yields no rows", func(t *testing.T) {
		assert.Empty(t, BuildCriteriaOverTime(nil, Filter{}, refNow, 7))
	})

	t.Run("rows per label equal window length", func(t *testing.T) {
		points := BuildCriteriaOverTime(records, Filter{}, refNow, 10)
		perLabel := map[string]int{}
		for _, p := range points {
			perLabel[p.Label]++
		}
		assert.Equal(t, map[string]int{"Coverage": 10, "Speed": 10}, perLabel)
	})
}

func TestBuildDashboardMatchesIndividualViews(t *testing.T) {
	records := []models.FeedbackRecord{
		rated(1, "mobile", "A", time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC), `[{"a":{"label":"Speed","rating":"4"}}]`),
		rated(2, "fixe", "B", time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), `[{"a":{"label":"Speed","rating":"2"},"b":{"label":"Price","rating":"3"}}]`),
		rated(3, "fixe", "B", time.Time{}, `[{"a":{"label":"Price","rating":"1"}}]`),
	}
	f := Filter{Provider: "B"}

	d := BuildDashboard(records, f, refNow, 5)

	assert.Equal(t, BuildSummary(records, f), d.Summary)
	assert.Equal(t, BuildCriteria(records, f), d.Criteria)
	assert.Equal(t, BuildTimeSeries(records, f, refNow, 5), d.TimeSeries)
	assert.Equal(t, BuildHeatmap(records, f), d.Heatmap)
	assert.Equal(t, BuildCriteriaOverTime(records, f, refNow, 5), d.CriteriaOverTime)
}

func TestWindow(t *testing.T) {
	w := NewWindow(refNow, 3)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []string{"2025-01-08", "2025-01-09", "2025-01-10"}, w.Dates())

	assert.Equal(t, MaxWindowDays, NewWindow(refNow, MaxWindowDays+10).Len())

	// a local "now" is anchored in UTC
	local := time.Date(2025, 1, 11, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	assert.Equal(t, []string{"2025-01-08", "2025-01-09", "2025-01-10"}, NewWindow(local, 3).Dates())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.5, mean(5, 2))
	assert.Equal(t, 2.33, mean(7, 3))
	assert.Equal(t, 2.12, mean(17, 8))
	assert.Equal(t, 1.07, mean(43, 40))
	assert.Equal(t, 1.43, mean(57, 40))
	assert.Equal(t, 0.0, mean(0, 0))
}
