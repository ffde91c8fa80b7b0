package resolve

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchThreshold separates "is a match" from "is not". Callers must use this
// constant rather than hardcoding their own cutoff. The value is tunable via
// configuration; it has not been validated against a labeled fixture set
// beyond the consistency cases in the tests.
const MatchThreshold = 0.75

// Scoring component weights. Token overlap can never reach the exact-match
// score on its own, and edit distance is a tertiary signal gated high enough
// that unrelated names stay below threshold.
const (
	tokenOverlapCeiling   = 0.9
	editSimilarityGate    = 0.8
	editSimilarityCeiling = 0.85
)

// Score computes the confidence in [0,1] that candidateName refers to the
// same person as the query that produced variants. Deterministic, and
// order-invariant in its token-overlap component: reordering the tokens of
// candidateName yields the same overlap score.
func Score(variants []string, candidateName string) float64 {
	candTokens := canonicalTokens(candidateName)
	if len(candTokens) == 0 || len(variants) == 0 {
		return 0
	}
	candCanonical := strings.Join(candTokens, " ")
	candSet := tokenSet(candTokens)

	best := 0.0
	for _, variant := range variants {
		vTokens := canonicalTokens(variant)
		if len(vTokens) == 0 {
			continue
		}

		// Exact match of any variant against the normalized candidate
		if strings.Join(vTokens, " ") == candCanonical {
			return 1.0
		}

		// Token-set overlap, order-invariant. Human names need at least
		// two common tokens before overlap means anything; a shared
		// surname alone is noise.
		overlap := jaccard(tokenSet(vTokens), candSet)
		if overlap.intersection >= 2 {
			if s := tokenOverlapCeiling * overlap.ratio; s > best {
				best = s
			}
		}

		// Edit distance as a tertiary signal, for spelling drift the
		// token comparison misses ("Jon" vs "John"). Gated high so
		// unrelated names do not creep over the threshold.
		if overlap.ratio < 1 {
			if s := editSimilarity(strings.Join(vTokens, " "), candCanonical); s > best {
				best = s
			}
		}
	}

	if best > 1 {
		best = 1
	}
	return best
}

// IsMatch reports whether candidateName scores at or above MatchThreshold.
func IsMatch(variants []string, candidateName string) bool {
	return Score(variants, candidateName) >= MatchThreshold
}

type overlapResult struct {
	intersection int
	ratio        float64 // Jaccard: intersection over union
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func jaccard(a, b map[string]bool) overlapResult {
	if len(a) == 0 || len(b) == 0 {
		return overlapResult{}
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return overlapResult{
		intersection: intersection,
		ratio:        float64(intersection) / float64(union),
	}
}

// editSimilarity maps Levenshtein distance between two canonical names into
// a score, or 0 when the similarity is below the gate.
func editSimilarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}

	dist := fuzzy.LevenshteinDistance(a, b)
	ratio := 1 - float64(dist)/float64(longest)
	if ratio < editSimilarityGate {
		return 0
	}
	return editSimilarityCeiling * ratio
}
