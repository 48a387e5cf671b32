// Package pipeline reduces raw detector findings to the set that should
// actually be redacted under the request's policy settings.
//
// The stage order is fixed: type filter, threshold filter, term policy
// filter over the detector stream; independently the deny-term scanner runs
// over the raw source text; finally the two streams are merged and
// deduplicated. Every stage is a pure function over its inputs with no
// shared state, so a Pipeline is safe for concurrent use across requests.
package pipeline

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lawlawrd/polly/internal/entity"
	pollyotel "github.com/lawlawrd/polly/internal/otel"
	"github.com/lawlawrd/polly/internal/policy"
)

var tracer = pollyotel.Tracer("github.com/lawlawrd/polly/internal/pipeline")

// ErrNoSourceText is returned when offset-based filtering is requested
// against an empty source. Malformed entities degrade silently, but a
// missing source text is a contract violation: every span operation
// depends on it.
var ErrNoSourceText = errors.New("pipeline: source text required when entities are present")

// Pipeline orchestrates the filter stages. The zero value is usable.
type Pipeline struct{}

// New returns a Pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Run applies the full filter pipeline and returns the deduplicated entity
// list to hand to the anonymization service. It never errors on malformed
// entity records (they are treated as filtered-out noise) but rejects an
// empty source text when raw entities were supplied.
func (p *Pipeline) Run(ctx context.Context, raw []entity.Entity, sourceText string, settings policy.Settings) ([]entity.Entity, error) {
	_, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	if sourceText == "" && len(raw) > 0 {
		return nil, ErrNoSourceText
	}

	primary := FilterByType(raw, settings.EntityTypes)
	primary = FilterByThreshold(primary, settings.Threshold)
	primary = FilterByTerms(primary, sourceText, settings.AllowTerms, settings.DenyTerms)

	supplemental := ScanDenylist(sourceText, settings.DenyTerms)

	merged := Merge(primary, supplemental)

	span.SetAttributes(
		attribute.Int("filter.raw_count", len(raw)),
		attribute.Int("filter.primary_count", len(primary)),
		attribute.Int("filter.denylist_count", len(supplemental)),
		attribute.Int("filter.merged_count", len(merged)),
	)

	return merged, nil
}
