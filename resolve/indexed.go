package resolve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/fintrace/insider/budget"
	"github.com/fintrace/insider/errors"
)

// maxIndexedQueries bounds how many variants are sent to the indexed search
// surface. The first variants carry the most signal; past the third the
// queries are reorderings the index already matched.
const maxIndexedQueries = 3

// IndexedStrategy queries the global full-text search surface for filings
// referencing the name and groups the hits by entity. Fast path: a handful
// of requests regardless of universe size.
type IndexedStrategy struct {
	index     SearchIndex
	budget    *budget.Budget
	threshold float64
	log       *zap.SugaredLogger
}

// NewIndexedStrategy creates the indexed search strategy. All requests are
// gated by the shared budget.
func NewIndexedStrategy(index SearchIndex, b *budget.Budget, threshold float64, log *zap.SugaredLogger) *IndexedStrategy {
	if threshold <= 0 {
		threshold = MatchThreshold
	}
	return &IndexedStrategy{index: index, budget: b, threshold: threshold, log: log}
}

// Search queries the index with up to maxIndexedQueries variants, merges and
// deduplicates the returned filing references, and scores the grouped filer
// names. Fails with an error wrapping errors.ErrSearchUnavailable only when
// no variant query succeeded; a successful empty result returns (nil, nil).
func (s *IndexedStrategy) Search(ctx context.Context, variants []string) ([]CandidateMatch, error) {
	terms := variants
	if len(terms) > maxIndexedQueries {
		terms = terms[:maxIndexedQueries]
	}

	var refs []FilingRef
	seen := make(map[string]bool)
	succeeded := 0
	var lastErr error

	for _, term := range terms {
		if err := s.budget.Acquire(ctx); err != nil {
			lastErr = err
			break
		}

		hits, err := s.index.SearchFilings(ctx, term)
		if err != nil {
			s.log.Debugw("Indexed query failed", "term", term, "error", err)
			lastErr = err
			continue
		}
		succeeded++

		for _, ref := range hits {
			// A filing matched by several variants counts once
			key := ref.AccessionNo + "|" + ref.FilerName
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, ref)
		}
	}

	if succeeded == 0 {
		if lastErr == nil {
			lastErr = errors.New("no variant queries issued")
		}
		return nil, errors.NewSearchUnavailable(lastErr, "indexed search")
	}

	return s.groupAndScore(variants, refs), nil
}

// groupAndScore groups filing references by entity, scores each distinct
// filer name at that entity, and keeps those at or above the threshold.
// Identically scoring names become separate matches; ambiguity is the
// caller's to judge.
func (s *IndexedStrategy) groupAndScore(variants []string, refs []FilingRef) []CandidateMatch {
	type group struct {
		entity  Entity
		byFiler map[string][]FilingEvidence
	}
	groups := make(map[string]*group)

	for _, ref := range refs {
		g, ok := groups[ref.EntityCIK]
		if !ok {
			g = &group{
				entity:  Entity{CIK: ref.EntityCIK, Name: ref.EntityName},
				byFiler: make(map[string][]FilingEvidence),
			}
			groups[ref.EntityCIK] = g
		}
		g.byFiler[ref.FilerName] = append(g.byFiler[ref.FilerName], FilingEvidence{
			AccessionNo: ref.AccessionNo,
			Filed:       ref.Filed,
		})
	}

	var matches []CandidateMatch
	for _, g := range groups {
		for filerName, evidence := range g.byFiler {
			score := Score(variants, filerName)
			if score < s.threshold {
				continue
			}
			matches = append(matches, CandidateMatch{
				Entity:     g.entity,
				FilerName:  filerName,
				Confidence: score,
				Evidence:   evidence,
			})
		}
	}

	// Map iteration order is random; aggregation must not depend on it,
	// but stable output makes logs and tests readable.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Entity.CIK != matches[j].Entity.CIK {
			return matches[i].Entity.CIK < matches[j].Entity.CIK
		}
		return matches[i].FilerName < matches[j].FilerName
	})

	return matches
}
