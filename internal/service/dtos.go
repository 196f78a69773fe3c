package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	maxTypeLen     = 20
	maxProviderLen = 255
)

// Criterion is one rated criterion as submitted by a client.
type Criterion struct {
	Label    string `json:"label"`
	Sublabel string `json:"sublabel"`
	Rating   string `json:"rating"`

	// first member absent or null in the decoded JSON
	missing string
}

func (c *Criterion) UnmarshalJSON(b []byte) error {
	var raw struct {
		Label    *string `json:"label"`
		Sublabel *string `json:"sublabel"`
		Rating   *string `json:"rating"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Criterion{}
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"label", raw.Label, &c.Label},
		{"sublabel", raw.Sublabel, &c.Sublabel},
		{"rating", raw.Rating, &c.Rating},
	} {
		if f.src == nil {
			if c.missing == "" {
				c.missing = f.name
			}
			continue
		}
		*f.dst = *f.src
	}
	return nil
}

// FeedbackInput is a feedback submission. Each ratings entry maps a client
// chosen key to one criterion.
type FeedbackInput struct {
	Type        string                 `json:"type"`
	Provider    string                 `json:"provider"`
	Ratings     []map[string]Criterion `json:"ratings"`
	Comments    string                 `json:"comments"`
	Attachment  string                 `json:"attachment"`
	NPerfTestID string                 `json:"nperf_test_id"`
	Sector      string                 `json:"sector"`

	providerMissing bool
}

func (in *FeedbackInput) UnmarshalJSON(b []byte) error {
	type plain FeedbackInput
	var aux struct {
		plain
		Provider *string `json:"provider"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*in = FeedbackInput(aux.plain)
	if aux.Provider == nil {
		in.providerMissing = true
	} else {
		in.Provider = *aux.Provider
	}
	return nil
}

// NPerfInput links an nPerf speed test to a sector.
type NPerfInput struct {
	NPerfTestID  string `json:"nperf_test_id"`
	ExternalUUID string `json:"external_uuid"`
	Sector       string `json:"sector"`
}

type meta struct {
	Comments   string `json:"comments"`
	Attachment string `json:"attachment"`
}

func (in FeedbackInput) validate() error {
	typ := strings.TrimSpace(in.Type)
	switch {
	case typ == "":
		return fmt.Errorf("%w: type is required", ErrInvalidFeedback)
	case len(typ) > maxTypeLen:
		return fmt.Errorf("%w: type exceeds %d characters", ErrInvalidFeedback, maxTypeLen)
	case len(in.Provider) > maxProviderLen:
		return fmt.Errorf("%w: provider exceeds %d characters", ErrInvalidFeedback, maxProviderLen)
	case in.providerMissing:
		return fmt.Errorf("%w: provider is required", ErrInvalidFeedback)
	case in.Ratings == nil:
		return fmt.Errorf("%w: ratings are required", ErrInvalidFeedback)
	}
	for i, entry := range in.Ratings {
		for key, c := range entry {
			if c.missing != "" {
				return fmt.Errorf("%w: ratings[%d].%s.%s is required", ErrInvalidFeedback, i, key, c.missing)
			}
		}
	}
	return nil
}

// ratingsPayload renders the ratings array as stored. A trailing _meta entry
// carries comments and attachment when either is set.
func (in FeedbackInput) ratingsPayload() (json.RawMessage, error) {
	entries := make([]any, 0, len(in.Ratings)+1)
	for _, r := range in.Ratings {
		entries = append(entries, r)
	}
	if in.Comments != "" || in.Attachment != "" {
		entries = append(entries, map[string]meta{
			"_meta": {Comments: in.Comments, Attachment: in.Attachment},
		})
	}
	return json.Marshal(entries)
}

func (in NPerfInput) validate() error {
	if strings.TrimSpace(in.NPerfTestID) == "" {
		return fmt.Errorf("%w: nperf_test_id is required", ErrInvalidFeedback)
	}
	return nil
}
