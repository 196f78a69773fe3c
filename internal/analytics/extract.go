package analytics

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"
)

// CriterionSample is one (criterion, rating) pair pulled out of a stored
// ratings payload.
type CriterionSample struct {
	Label  string
	Rating int
}

var ratingValues = map[string]int{"1": 1, "2": 2, "3": 3, "4": 4}

// Samples yields the well-formed criterion ratings of a ratings payload in
// document order.
//
// The payload is expected to be a JSON array of objects, each mapping an
// arbitrary key to {"label": ..., "rating": ...}. Anything that does not fit
// that shape, including the "_meta" comment entry, is skipped. Samples never
// fails.
func Samples(ratings json.RawMessage) iter.Seq[CriterionSample] {
	return func(yield func(CriterionSample) bool) {
		var entries []json.RawMessage
		if err := json.Unmarshal(ratings, &entries); err != nil {
			return
		}
		for _, entry := range entries {
			for _, val := range entryValues(entry) {
				sample, ok := parseCriterion(val)
				if !ok {
					continue
				}
				if !yield(sample) {
					return
				}
			}
		}
	}
}

// entryValues returns the values of a JSON object in document order, or nil
// when entry is not an object. A repeated key keeps the slot of its first
// occurrence and the value of its last.
func entryValues(entry json.RawMessage) []json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(entry))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	var values []json.RawMessage
	seen := map[string]int{}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return values
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return values
		}
		name, _ := key.(string)
		if i, ok := seen[name]; ok {
			values[i] = val
			continue
		}
		seen[name] = len(values)
		values = append(values, val)
	}
	return values
}

func parseCriterion(val json.RawMessage) (CriterionSample, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(val, &fields); err != nil || fields == nil {
		return CriterionSample{}, false
	}

	label, ok := stringField(fields, "label")
	if !ok || label == "" {
		return CriterionSample{}, false
	}
	rating, ok := stringField(fields, "rating")
	if !ok {
		return CriterionSample{}, false
	}
	value, ok := ratingValues[rating]
	if !ok {
		return CriterionSample{}, false
	}
	return CriterionSample{Label: label, Rating: value}, true
}

// stringField reads a trimmed string member. Missing and null members read as
// the empty string; any other non-string member is rejected.
func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}
