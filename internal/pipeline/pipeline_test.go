package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/policy"
)

func TestPipelinePassThrough(t *testing.T) {
	source := "Call Jan Jansen at jan@example.com"
	raw := []entity.Entity{
		entity.Entity{EntityType: "PERSON", Start: 5, End: 15}.WithScore(0.9),
		entity.Entity{EntityType: "EMAIL_ADDRESS", Start: 19, End: 34}.WithScore(0.95),
	}
	settings := policy.NormalizeSettings(policy.SettingsInput{})

	got, err := New().Run(context.Background(), raw, source, settings)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "5-15-PERSON", got[0].Key())
	assert.Equal(t, "Jan Jansen", got[0].FoundText)
	assert.Equal(t, "19-34-EMAIL_ADDRESS", got[1].Key())
	assert.Equal(t, "jan@example.com", got[1].FoundText)
}

func TestPipelineDenylistFloor(t *testing.T) {
	// The detector found nothing, but deny terms are still redacted.
	source := "Secret project CodeAlpha is active"
	settings := policy.NormalizeSettings(policy.SettingsInput{DenyText: "codealpha"})

	got, err := New().Run(context.Background(), nil, source, settings)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.TypeDenylistTerm, got[0].EntityType)
	assert.Equal(t, "CodeAlpha", got[0].FoundText)
	assert.Equal(t, 15, got[0].Start)
	assert.Equal(t, 24, got[0].End)
}

func TestPipelineStageOrder(t *testing.T) {
	source := "Jan met Piet and told Acme Corp about CodeAlpha"
	raw := []entity.Entity{
		entity.Entity{EntityType: "PERSON", Start: 0, End: 3}.WithScore(0.9),         // Jan
		entity.Entity{EntityType: "PERSON", Start: 8, End: 12}.WithScore(0.3),        // Piet: below threshold
		entity.Entity{EntityType: "ORGANIZATION", Start: 22, End: 31}.WithScore(0.9), // Acme Corp: allowed
		entity.Entity{EntityType: "LOCATION", Start: 0, End: 3}.WithScore(0.9),       // wrong type
	}
	settings := policy.NormalizeSettings(policy.SettingsInput{
		Threshold:   "0.5",
		EntityTypes: "PERSON,ORGANIZATION",
		AllowText:   "acme corp",
		DenyText:    "codealpha",
	})

	got, err := New().Run(context.Background(), raw, source, settings)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Model stream first, denylist stream second.
	assert.Equal(t, "PERSON", got[0].EntityType)
	assert.Equal(t, "Jan", got[0].FoundText)
	assert.Equal(t, entity.TypeDenylistTerm, got[1].EntityType)
	assert.Equal(t, "CodeAlpha", got[1].FoundText)
}

func TestPipelineDenyTermFromDetectorAndScannerNotDuplicated(t *testing.T) {
	// The detector flags the deny term too, at the same span but with its
	// own type, so both records survive the merge (distinct dedup keys).
	source := "about CodeAlpha"
	raw := []entity.Entity{
		entity.Entity{EntityType: "PROJECT", Start: 6, End: 15}.WithScore(0.8),
	}
	settings := policy.NormalizeSettings(policy.SettingsInput{DenyText: "codealpha"})

	got, err := New().Run(context.Background(), raw, source, settings)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "6-15-PROJECT", got[0].Key())
	assert.Equal(t, "6-15-DENYLIST_TERM", got[1].Key())
}

func TestPipelineRequiresSourceText(t *testing.T) {
	raw := []entity.Entity{{EntityType: "PERSON", Start: 0, End: 3}}
	_, err := New().Run(context.Background(), raw, "", policy.Settings{})
	assert.ErrorIs(t, err, ErrNoSourceText)
}

func TestPipelineEmptyEverything(t *testing.T) {
	got, err := New().Run(context.Background(), nil, "", policy.Settings{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPipelineIsPure(t *testing.T) {
	source := "Call Jan Jansen at jan@example.com"
	raw := []entity.Entity{
		entity.Entity{EntityType: "PERSON", Start: 5, End: 15}.WithScore(0.9),
	}
	settings := policy.NormalizeSettings(policy.SettingsInput{DenyText: "jan@example.com"})

	p := New()
	first, err := p.Run(context.Background(), raw, source, settings)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), raw, source, settings)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Input records are not mutated: FoundText is attached to copies only.
	assert.Empty(t, raw[0].FoundText)
}
