package matcher

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/agentstation/archsync/pkg/constants"
)

// Score returns the similarity of two names in [0,100]. Names are compared
// case-insensitively with underscores, dashes, dots, spaces and camel-case
// boundaries treated alike. Identical names score 100.
func Score(a, b string) int {
	return prepare(a).score(prepare(b))
}

// form is a name in its two comparable shapes.
type form struct {
	joined string // tokens in original order
	sorted string // tokens in lexical order
}

func prepare(name string) form {
	tokens := tokenize(name)
	sorted := slices.Clone(tokens)
	slices.Sort(sorted)
	return form{
		joined: strings.Join(tokens, "_"),
		sorted: strings.Join(sorted, "_"),
	}
}

func (f form) score(other form) int {
	best := max(similarity(f.joined, other.joined), similarity(f.sorted, other.sorted))
	return int(math.Round(min(max(best, 0), 100)))
}

// similarity is the normalized edit-distance ratio plus a bonus for a shared
// prefix, scaled by the room left below 100.
func similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	shortest := min(len(ra), len(rb))
	if shortest == 0 {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	base := (1 - float64(dist)/float64(longest)) * 100

	prefix := 0
	for prefix < shortest && ra[prefix] == rb[prefix] {
		prefix++
	}
	return base + float64(prefix)/float64(shortest)*(100-base)*constants.PrefixWeight
}

// tokenize splits a symbol or port name into lower-case words.
func tokenize(name string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return tokens
}
