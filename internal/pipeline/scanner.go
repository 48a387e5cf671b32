package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/policy"
)

// ScanDenylist scans the source text for literal occurrences of every deny
// term and synthesizes an entity per hit. This is the floor guarantee: deny
// terms are redacted even when the detection service missed them entirely.
//
// Matching is case-insensitive and advances left to right per term, so
// re-entrant matches of the same term are emitted once, while matches of
// different terms may overlap each other and are all emitted. Terms are
// scanned in sorted order so output is deterministic.
//
// Lowercasing can change a rune's byte length (U+212A KELVIN SIGN folds to
// the 1-byte "k"), so matches are located in a folded copy and mapped back
// to original byte offsets before spans are emitted.
func ScanDenylist(source string, deny policy.TermSet) []entity.Entity {
	if deny.Empty() || source == "" {
		return nil
	}

	folded, origin := foldSource(source)
	terms := deny.Terms()
	sort.Strings(terms)

	var out []entity.Entity
	for _, term := range terms {
		if term == "" {
			continue
		}
		cursor := 0
		for cursor < len(folded) {
			idx := strings.Index(folded[cursor:], term)
			if idx < 0 {
				break
			}
			at := cursor + idx
			start := origin[at]
			end := origin[at+len(term)]
			out = append(out, entity.Entity{
				EntityType:       entity.TypeDenylistTerm,
				Start:            start,
				End:              end,
				FoundText:        source[start:end],
				RecognizerResult: entity.SourceDenylist,
			}.WithScore(1))
			cursor = at + len(term)
		}
	}
	return out
}

// foldSource lowercases source rune by rune, recording for every byte of the
// folded form the original byte offset of the rune it came from. A final
// entry maps the folded length to len(source) so match ends resolve too.
// Deny terms are valid UTF-8, so matches in the folded form always cover
// whole folded runes and both mapped offsets land on rune boundaries of the
// original source.
func foldSource(source string) (string, []int) {
	var sb strings.Builder
	sb.Grow(len(source))
	origin := make([]int, 0, len(source)+1)
	for i, r := range source {
		n, _ := sb.WriteRune(unicode.ToLower(r))
		for ; n > 0; n-- {
			origin = append(origin, i)
		}
	}
	origin = append(origin, len(source))
	return sb.String(), origin
}
