package pipeline

import (
	"strings"

	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/policy"
)

// FilterByType keeps only entities whose uppercased type is in the requested
// set. An empty set means no restriction and passes everything through.
// Invalid records are dropped silently as noise from the untrusted detector.
func FilterByType(entities []entity.Entity, types policy.TermSet) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if !e.Valid() {
			continue
		}
		if types.Empty() || types.Contains(strings.ToUpper(policy.Canonical(e.EntityType))) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByThreshold applies the inclusive confidence gate. An entity without
// a score is included unconditionally: absence of a confidence signal is not
// grounds for exclusion, so sensitive content is never dropped merely
// because the detector omitted a score.
func FilterByThreshold(entities []entity.Entity, threshold float64) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if !e.Valid() {
			continue
		}
		if score, ok := e.ScoreOf(); ok && score < threshold {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByTerms applies allow/deny term policy per entity. The literal
// found-text is computed from the source span and attached to each surviving
// record; comparison happens on the canonical lowercase form. Precedence is
// fixed: deny forces inclusion, then allow forces exclusion, then the entity
// is included by default (it already passed the type and threshold stages).
// Entities whose span normalizes to an empty string are dropped.
func FilterByTerms(entities []entity.Entity, source string, allow, deny policy.TermSet) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		found := e.Text(source)
		term := policy.CanonicalTerm(found)
		if term == "" {
			continue
		}
		e.FoundText = found
		switch {
		case deny.Contains(term):
			out = append(out, e)
		case allow.Contains(term):
			// allowed: excluded from redaction
		default:
			out = append(out, e)
		}
	}
	return out
}
