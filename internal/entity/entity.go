// Package entity defines the validated record type for detected or
// synthesized sensitive-text findings.
//
// Detector output is untrusted: records arrive as loosely-shaped JSON from an
// external analysis service and may be partially corrupted. Decode coerces
// them into Entity values at the boundary and silently drops anything that
// does not carry a usable span, so downstream filters never have to re-check
// shape ad hoc.
package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SourceDenylist tags entities synthesized by the deny-term scanner rather
// than reported by the detection service.
const SourceDenylist = "denylist"

// TypeDenylistTerm is the entity type assigned to synthetic deny-term hits.
const TypeDenylistTerm = "DENYLIST_TERM"

// Entity is a single finding: a half-open [Start,End) span into the
// plain-text source, an uppercase category code, and an optional confidence.
// Score is a pointer because absence is meaningful: a finding without a
// confidence signal always passes threshold filtering.
type Entity struct {
	EntityType       string   `json:"entity_type"`
	Start            int      `json:"start"`
	End              int      `json:"end"`
	Score            *float64 `json:"score,omitempty"`
	FoundText        string   `json:"found_text,omitempty"`
	RecognizerResult string   `json:"recognizer_result,omitempty"`
}

// Key returns the dedup key identifying this finding across sources.
// Two entities with the same key are the same finding regardless of
// score or provenance.
func (e Entity) Key() string {
	return fmt.Sprintf("%d-%d-%s", e.Start, e.End, e.EntityType)
}

// Valid reports whether the span is usable: 0 <= Start < End.
func (e Entity) Valid() bool {
	return e.Start >= 0 && e.Start < e.End
}

// Text returns the literal substring source[Start:End], or "" when the span
// does not fit the source. Offsets are byte offsets into the plain-text
// projection the detector analyzed.
func (e Entity) Text(source string) string {
	if !e.Valid() || e.End > len(source) {
		return ""
	}
	return source[e.Start:e.End]
}

// rawEntity mirrors the detector wire shape with everything optional, so a
// record missing offsets decodes instead of failing the whole batch. Score
// is untyped because detectors have been seen emitting it as a string; a
// value that does not parse as a number is treated as absent.
type rawEntity struct {
	EntityType       *string     `json:"entity_type"`
	Start            *int        `json:"start"`
	End              *int        `json:"end"`
	Score            interface{} `json:"score"`
	RecognizerResult string      `json:"recognizer_result"`
}

// parseScore coerces a raw score value to a float64 if possible.
func parseScore(v interface{}) (float64, bool) {
	switch s := v.(type) {
	case float64:
		return s, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Decode parses a detector entity array. Malformed elements (non-objects,
// records without numeric offsets, inverted or negative spans) are dropped,
// never raised: upstream output is untrusted and partial corruption should
// degrade gracefully. A payload that is not a JSON array at all is an error.
func Decode(data []byte) ([]Entity, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding entity list: %w", err)
	}

	out := make([]Entity, 0, len(items))
	for _, item := range items {
		var raw rawEntity
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		if raw.EntityType == nil || raw.Start == nil || raw.End == nil {
			continue
		}
		e := Entity{
			EntityType:       *raw.EntityType,
			Start:            *raw.Start,
			End:              *raw.End,
			RecognizerResult: raw.RecognizerResult,
		}
		if !e.Valid() {
			continue
		}
		if score, ok := parseScore(raw.Score); ok {
			e.Score = &score
		}
		out = append(out, e)
	}
	return out, nil
}

// ScoreOf returns the entity's score and whether one is present.
func (e Entity) ScoreOf() (float64, bool) {
	if e.Score == nil {
		return 0, false
	}
	return *e.Score, true
}

// WithScore returns a copy of e carrying the given confidence.
func (e Entity) WithScore(score float64) Entity {
	e.Score = &score
	return e
}
