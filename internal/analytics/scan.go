package analytics

import (
	"slices"
	"strconv"

	"github.com/artci/feedback-api/internal/repository/models"
)

// View accumulates one aggregation while Scan walks the filtered records.
// Views must not keep the samples slice; it is reused between records.
type View interface {
	observe(rec models.FeedbackRecord, samples []CriterionSample)
	wantsSamples() bool
}

// Scan filters records once, extracts each surviving record's samples once,
// and feeds both to every view.
func Scan(records []models.FeedbackRecord, f Filter, views ...View) {
	m := f.compile()
	extract := slices.ContainsFunc(views, View.wantsSamples)

	var samples []CriterionSample
	for _, rec := range records {
		if !m.match(rec) {
			continue
		}
		samples = samples[:0]
		if extract {
			samples = slices.AppendSeq(samples, Samples(rec.Ratings))
		}
		for _, v := range views {
			v.observe(rec, samples)
		}
	}
}

// Distribution counts ratings per value; it always carries the keys "1".."4".
type Distribution map[string]int

var ratingKeys = [4]string{"1", "2", "3", "4"}

func newDistribution(counts [4]int) Distribution {
	d := make(Distribution, len(ratingKeys))
	for i, k := range ratingKeys {
		d[k] = counts[i]
	}
	return d
}

// Total returns the number of ratings counted.
func (d Distribution) Total() int {
	n := 0
	for _, k := range ratingKeys {
		n += d[k]
	}
	return n
}

func mean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return round2(float64(sum) / float64(count))
}

// round2 rounds the exact binary value of x to two decimals, ties to even.
// Scaling by 100 first would create false ties such as 43/40.
func round2(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return v
}
