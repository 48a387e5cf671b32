package entity

// Without returns the entities whose dedup key is not in disabled, keeping
// the original order. Used when the user toggles individual findings off:
// annotation always restarts from the original markup with the reduced set.
func Without(entities []Entity, disabled []string) []Entity {
	if len(disabled) == 0 {
		return entities
	}
	off := make(map[string]bool, len(disabled))
	for _, key := range disabled {
		off[key] = true
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if off[e.Key()] {
			continue
		}
		out = append(out, e)
	}
	return out
}
