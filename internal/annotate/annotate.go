// Package annotate rewrites rich-text markup so that filtered findings show
// up as redacted placeholders.
//
// Offsets are computed against the plain-text projection of the document,
// not against its markup serialization, so the two never line up directly.
// The annotator therefore anchors on each finding's literal text: the span
// selects WHICH string to redact, and replacement then fires on every
// textual occurrence of that string in the whole markup. That is deliberate
// and aggressive; see Annotate for the ordering rule that keeps overlapping
// literals from corrupting each other.
package annotate

import (
	"context"
	"errors"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lawlawrd/polly/internal/entity"
	pollyotel "github.com/lawlawrd/polly/internal/otel"
)

var tracer = pollyotel.Tracer("github.com/lawlawrd/polly/internal/annotate")

// ErrNoPlainText is returned when entities are supplied without the
// plain-text projection their offsets refer to.
var ErrNoPlainText = errors.New("annotate: plain text required when entities are present")

// DisplayNameFunc resolves an entity type to the human-readable label shown
// in the redaction placeholder. An empty result falls back to a generic
// placeholder.
type DisplayNameFunc func(entityType string) string

// Annotator rewrites markup with redaction placeholders. It holds only the
// injected display-name resolver and is safe for concurrent use.
type Annotator struct {
	displayName DisplayNameFunc
}

// New creates an Annotator with the given display-name resolver. A nil
// resolver falls back to the raw entity type.
func New(displayName DisplayNameFunc) *Annotator {
	if displayName == nil {
		displayName = func(entityType string) string { return entityType }
	}
	return &Annotator{displayName: displayName}
}

// Annotate produces the redacted markup for the given entity set. Each
// entity's found-text is recomputed from plainText[start:end]; entities
// whose span does not fit are skipped. Replacement is global literal-text
// substitution with an HTML-escaped placeholder.
//
// Entities are processed longest found-text first, so when one finding's
// literal is a substring of another's ("Jan" inside "Jan Jansen"), the
// longer match is substituted before the shorter pass can consume its
// characters.
//
// Annotate is idempotent under re-annotation from the original markup:
// toggling findings off and calling again with the reduced set, always
// starting from the original unredacted markup, reproduces exactly the
// redaction state that set implies. Callers must never feed already
// redacted markup back in, or matches against placeholder text can occur.
func (a *Annotator) Annotate(ctx context.Context, markup, plainText string, entities []entity.Entity) (string, error) {
	_, span := tracer.Start(ctx, "annotate.markup")
	defer span.End()

	if plainText == "" && len(entities) > 0 {
		return "", ErrNoPlainText
	}

	ordered := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if found := e.Text(plainText); found != "" {
			e.FoundText = found
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].FoundText) > len(ordered[j].FoundText)
	})

	replaced := 0
	for _, e := range ordered {
		placeholder := "&lt;" + html.EscapeString(a.label(e.EntityType)) + "&gt;"
		if strings.Contains(markup, e.FoundText) {
			markup = strings.ReplaceAll(markup, e.FoundText, placeholder)
			replaced++
		}
	}

	span.SetAttributes(
		attribute.Int("annotate.entity_count", len(entities)),
		attribute.Int("annotate.replaced_count", replaced),
	)
	return markup, nil
}

func (a *Annotator) label(entityType string) string {
	if name := a.displayName(entityType); name != "" {
		return name
	}
	if entityType != "" {
		return entityType
	}
	return "REDACTED"
}

// strict strips every tag and attribute, leaving text content only.
var strict = bluemonday.StrictPolicy()

// PlainText projects rich markup onto the plain text the detector analyzed.
// Used when a caller supplies only markup and needs the offset reference
// text; tags are stripped and residual HTML entities decoded.
func PlainText(markup string) string {
	return html.UnescapeString(strict.Sanitize(markup))
}
