// Package policy holds the per-request redaction policy: the confidence
// threshold, the optional entity-type allow-set, and the literal allow/deny
// term lists, all normalized once at the boundary so the filtering pipeline
// never re-validates them.
package policy

import "strconv"

// DefaultThreshold is the confidence gate applied when a request does not
// specify one. Matches the detection service's own default minimum score.
const DefaultThreshold = 0.5

// Settings is the normalized per-request configuration. Construct with
// NormalizeSettings; a zero Settings is valid (default threshold omitted)
// but callers should not build one by hand.
type Settings struct {
	// Threshold is the inclusive minimum confidence, always in [0,1].
	Threshold float64
	// EntityTypes restricts filtering to these uppercase type codes.
	// Empty means no restriction.
	EntityTypes TermSet
	// AllowTerms are literals excluded from redaction unless denied.
	AllowTerms TermSet
	// DenyTerms are literals always redacted; deny beats allow.
	DenyTerms TermSet
}

// SettingsInput is the raw, untrusted request shape before normalization.
// Threshold arrives as a string because form-ish clients send it that way;
// the lists arrive as free-form text blobs.
type SettingsInput struct {
	Threshold   string `json:"threshold"`
	EntityTypes string `json:"entity_types"`
	AllowText   string `json:"allow_list"`
	DenyText    string `json:"deny_list"`
}

// NormalizeSettings validates and canonicalizes raw settings. A non-numeric
// threshold falls back to DefaultThreshold; out-of-range values are clamped
// to [0,1]. Entity types are uppercased and deduplicated, term lists are
// normalized per TermSet rules. Never errors: every input has a defined
// normalization.
func NormalizeSettings(in SettingsInput) Settings {
	return Settings{
		Threshold:   ClampThreshold(in.Threshold),
		EntityTypes: NewTypeSet(in.EntityTypes),
		AllowTerms:  NewTermSet(in.AllowText),
		DenyTerms:   NewTermSet(in.DenyText),
	}
}

// ClampThreshold parses a threshold string, defaulting to DefaultThreshold
// when non-numeric and clamping the result into [0,1].
func ClampThreshold(raw string) float64 {
	v, err := strconv.ParseFloat(Canonical(raw), 64)
	if err != nil {
		return DefaultThreshold
	}
	if v != v { // NaN
		return DefaultThreshold
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
