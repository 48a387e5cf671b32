package pipeline

import "github.com/lawlawrd/polly/internal/entity"

// Merge deduplicates and concatenates two entity streams. Primary entities
// keep their original relative order and are inserted first; supplemental
// entities follow in their original order, skipping any whose dedup key
// (start-end-type) was already seen. Invalid records are dropped rather than
// erroring. First-seen-wins means a model-detected finding beats a synthetic
// one at the identical span and type.
func Merge(primary, supplemental []entity.Entity) []entity.Entity {
	seen := make(map[string]bool, len(primary)+len(supplemental))
	out := make([]entity.Entity, 0, len(primary)+len(supplemental))

	for _, stream := range [][]entity.Entity{primary, supplemental} {
		for _, e := range stream {
			if !e.Valid() {
				continue
			}
			key := e.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}
