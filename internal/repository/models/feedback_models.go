package models

import (
	"encoding/json"
	"time"
)

// FeedbackRecord is one stored feedback submission. Ratings holds the raw
// JSON array exactly as it was persisted.
type FeedbackRecord struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Provider    string          `json:"provider"`
	Ratings     json.RawMessage `json:"ratings"`
	NPerfTestID string          `json:"nperf_test_id,omitempty"`
	Sector      string          `json:"sector,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HasTimestamp reports whether the record carries a creation time.
func (r FeedbackRecord) HasTimestamp() bool {
	return !r.CreatedAt.IsZero()
}

type NPerfResult struct {
	ID           int64     `json:"id"`
	NPerfTestID  string    `json:"nperf_test_id"`
	ExternalUUID string    `json:"external_uuid,omitempty"`
	Sector       string    `json:"sector"`
	CreatedAt    time.Time `json:"created_at"`
}
