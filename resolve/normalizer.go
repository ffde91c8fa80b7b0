package resolve

import (
	"strings"
)

// MaxVariants caps the variant set produced for one query. Fallback scan cost
// scales with variant count x entity count, so the fanout stays bounded.
const MaxVariants = 8

// CanonicalKey returns the cache key for a raw query: lowercased with
// whitespace collapsed. Cache identity is per original query phrasing, not
// per expanded variant set.
func CanonicalKey(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// canonicalTokens reduces a name to its comparable token sequence:
// lowercase, punctuation stripped, "Last, First" rewritten to "First Last",
// honorifics and generational suffixes removed, single-letter middle
// initials dropped, nicknames expanded to formal names.
//
//	"Mr. Gale E. Klappa Jr."  -> [gale klappa]
//	"KLAPPA, GALE E"          -> [gale klappa]
//	"Dr. William J. Smith III" -> [william smith]
func canonicalTokens(raw string) []string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ';', ':', '!', '?', '\'', '"':
			return -1
		}
		return r
	}, s)

	// "Last, First Middle" -> "First Middle Last"
	if i := strings.IndexByte(s, ','); i >= 0 {
		last := strings.TrimSpace(s[:i])
		rest := strings.TrimSpace(strings.ReplaceAll(s[i+1:], ",", " "))
		s = rest + " " + last
	}

	words := strings.Fields(s)

	for len(words) > 0 && namePrefixes[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && nameSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}

	var tokens []string
	for _, w := range words {
		if len(w) <= 1 {
			continue // middle initials carry no matching signal
		}
		if formal, ok := nicknameMap[w]; ok {
			w = formal
		}
		tokens = append(tokens, w)
	}

	return tokens
}

// canonicalName returns the canonical "first [middle] last" form, or ""
// for unparseable input.
func canonicalName(raw string) string {
	return strings.Join(canonicalTokens(raw), " ")
}

// Normalize turns a raw human name into a bounded set of comparable
// variants covering the spellings the filing corpus uses: "First Last",
// "Last, First", "Last First", and the all-caps "LAST FIRST [M]" form.
// Pure and deterministic; returns nil for empty or unparseable input.
func Normalize(raw string) []string {
	tokens := canonicalTokens(raw)
	if len(tokens) == 0 {
		return nil
	}

	canonical := strings.Join(tokens, " ")

	variants := []string{canonical}
	if len(tokens) >= 2 {
		first := tokens[0]
		last := tokens[len(tokens)-1]

		variants = append(variants,
			first+" "+last,
			last+", "+first,
			last+" "+first,
			strings.ToUpper(last+" "+first),
			strings.ToUpper(last+", "+first),
			// The corpus convention: LAST FIRST MIDDLE, all caps
			strings.ToUpper(last+" "+strings.Join(tokens[:len(tokens)-1], " ")),
		)

		if len(tokens) == 3 {
			middle := tokens[1]
			variants = append(variants,
				first+" "+string(middle[0])+" "+last,
				strings.ToUpper(last+" "+first+" "+string(middle[0])),
			)
		}
	}

	seen := make(map[string]bool, len(variants))
	var unique []string
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
		if len(unique) == MaxVariants {
			break
		}
	}

	return unique
}
