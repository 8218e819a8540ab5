package vectorstore

import "strings"

// CollectionName derives the collection that holds a caller's chunks from their identity.
// The identity is lower-cased, '.' and '@' become '_', runs of '_' collapse to one
// and trailing '_' are removed. Applying it to its own output is a no-op.
func CollectionName(identity string) string {
	var b strings.Builder
	b.Grow(len(identity))

	prevUnderscore := false
	for _, r := range strings.ToLower(identity) {
		if r == '.' || r == '@' {
			r = '_'
		}
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}

	return strings.TrimRight(b.String(), "_")
}
