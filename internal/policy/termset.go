package policy

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TermSet is a set of canonicalized literal terms used for allow/deny
// matching. Membership is exact normalized-string equality; order is
// irrelevant. The zero value is an empty, usable set.
type TermSet map[string]struct{}

var (
	listSplit = regexp.MustCompile(`[\n,]+`)
	typeSplit = regexp.MustCompile(`[\s,]+`)
)

// NewTermSet builds a list-mode term set: input is split on newlines and
// commas, NFC-normalized, trimmed, and lowercased. Blank fragments are
// dropped. Malformed input never errors; it just yields an empty set.
func NewTermSet(inputs ...string) TermSet {
	return build(inputs, listSplit, strings.ToLower)
}

// NewTypeSet builds a type-mode set for entity-type codes: split on
// whitespace and commas, NFC-normalized, trimmed, and uppercased.
func NewTypeSet(inputs ...string) TermSet {
	return build(inputs, typeSplit, strings.ToUpper)
}

func build(inputs []string, split *regexp.Regexp, fold func(string) string) TermSet {
	set := TermSet{}
	for _, input := range inputs {
		for _, part := range split.Split(input, -1) {
			term := Canonical(part)
			if term == "" {
				continue
			}
			set[fold(term)] = struct{}{}
		}
	}
	return set
}

// Canonical applies the shared term normalization: Unicode NFC plus
// whitespace trimming. Case folding is the caller's concern because list
// terms fold down and type codes fold up.
func Canonical(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// CanonicalTerm normalizes a free-form string the way list terms are stored,
// so found-text can be compared against allow/deny sets.
func CanonicalTerm(s string) string {
	return strings.ToLower(Canonical(s))
}

// Contains reports membership of an already-normalized term.
func (t TermSet) Contains(term string) bool {
	_, ok := t[term]
	return ok
}

// Empty reports whether the set has no terms.
func (t TermSet) Empty() bool {
	return len(t) == 0
}

// Terms returns the members in unspecified order.
func (t TermSet) Terms() []string {
	out := make([]string, 0, len(t))
	for term := range t {
		out = append(out, term)
	}
	return out
}
