package dedup

import "strings"

// ShingleSize is the character n-gram length. Five characters is wide
// enough to cross word boundaries in news text while staying robust to
// small edits.
const ShingleSize = 5

// Shingles builds the set of character n-grams for text, lowercased
// and trimmed, iterating over runes so multi-byte characters count as
// one. Text shorter than the shingle size becomes a single
// whole-string shingle; empty text yields an empty set.
func Shingles(text string) map[string]struct{} {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return map[string]struct{}{}
	}

	runes := []rune(text)
	if len(runes) < ShingleSize {
		return map[string]struct{}{text: {}}
	}

	shingles := make(map[string]struct{}, len(runes)-ShingleSize+1)
	for i := 0; i+ShingleSize <= len(runes); i++ {
		shingles[string(runes[i:i+ShingleSize])] = struct{}{}
	}
	return shingles
}
