package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/policy"
)

func TestFilterByType(t *testing.T) {
	entities := []entity.Entity{
		{EntityType: "PERSON", Start: 0, End: 3},
		{EntityType: "EMAIL_ADDRESS", Start: 4, End: 9},
		{EntityType: "location", Start: 10, End: 14},
		{EntityType: "PERSON", Start: 20, End: 5}, // inverted span: noise
	}

	t.Run("empty set passes everything valid through", func(t *testing.T) {
		got := FilterByType(entities, policy.TermSet{})
		require.Len(t, got, 3)
	})

	t.Run("membership is case-insensitive on the entity side", func(t *testing.T) {
		got := FilterByType(entities, policy.NewTypeSet("LOCATION"))
		require.Len(t, got, 1)
		assert.Equal(t, "location", got[0].EntityType)
	})

	t.Run("non-member types dropped", func(t *testing.T) {
		got := FilterByType(entities, policy.NewTypeSet("PERSON"))
		require.Len(t, got, 1)
		assert.Equal(t, "0-3-PERSON", got[0].Key())
	})
}

func TestFilterByThreshold(t *testing.T) {
	const threshold = 0.5
	tests := []struct {
		name     string
		e        entity.Entity
		included bool
	}{
		{"above threshold", entity.Entity{EntityType: "PERSON", Start: 0, End: 3}.WithScore(0.9), true},
		{"exactly threshold is inclusive", entity.Entity{EntityType: "PERSON", Start: 0, End: 3}.WithScore(0.5), true},
		{"just below threshold", entity.Entity{EntityType: "PERSON", Start: 0, End: 3}.WithScore(0.4999999), false},
		{"missing score never excludes", entity.Entity{EntityType: "PERSON", Start: 0, End: 3}, true},
		{"zero score excluded", entity.Entity{EntityType: "PERSON", Start: 0, End: 3}.WithScore(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByThreshold([]entity.Entity{tt.e}, threshold)
			assert.Equal(t, tt.included, len(got) == 1)
		})
	}
}

func TestFilterByThresholdMissingScorePassesAnyThreshold(t *testing.T) {
	scoreless := []entity.Entity{{EntityType: "PERSON", Start: 0, End: 3}}
	for _, threshold := range []float64{0, 0.5, 1} {
		assert.Len(t, FilterByThreshold(scoreless, threshold), 1, "threshold %v", threshold)
	}
}

func TestFilterByTerms(t *testing.T) {
	source := "Contact Jan Jansen or Acme Corp about CodeAlpha today"
	allow := policy.NewTermSet("acme corp")
	deny := policy.NewTermSet("codealpha")

	entities := []entity.Entity{
		{EntityType: "PERSON", Start: 8, End: 18},        // "Jan Jansen": default include
		{EntityType: "ORGANIZATION", Start: 22, End: 31}, // "Acme Corp": allowed, excluded
		{EntityType: "PROJECT", Start: 38, End: 47},      // "CodeAlpha": denied, included
		{EntityType: "PERSON", Start: 18, End: 19},       // " ": degenerate span, dropped
	}

	got := FilterByTerms(entities, source, allow, deny)
	require.Len(t, got, 2)
	assert.Equal(t, "Jan Jansen", got[0].FoundText)
	assert.Equal(t, "CodeAlpha", got[1].FoundText)
}

func TestFilterByTermsDenyBeatsAllow(t *testing.T) {
	source := "mentioning CodeAlpha here"
	both := policy.NewTermSet("codealpha")

	got := FilterByTerms(
		[]entity.Entity{{EntityType: "PROJECT", Start: 11, End: 20}},
		source, both, both,
	)
	require.Len(t, got, 1, "a term in both lists must resolve to deny")
	assert.Equal(t, "CodeAlpha", got[0].FoundText)
}

func TestFilterByTermsAttachesLiteralFoundText(t *testing.T) {
	source := "Email JAN@EXAMPLE.COM now"
	got := FilterByTerms(
		[]entity.Entity{{EntityType: "EMAIL_ADDRESS", Start: 6, End: 21}},
		source, policy.TermSet{}, policy.TermSet{},
	)
	require.Len(t, got, 1)
	// FoundText keeps the original casing; only the comparison is folded.
	assert.Equal(t, "JAN@EXAMPLE.COM", got[0].FoundText)
}
