package resolve

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fintrace/insider/budget"
	"github.com/fintrace/insider/errors"
)

// ExhaustiveStrategy visits entities one by one, fetching each entity's
// recent filer names and scoring them. The slow path: used when the indexed
// surface is unavailable or its empty answer is not trusted. There is no
// early exit on the first confident match; one person may hold positions at
// several entities, so the scan runs to completion or deadline.
type ExhaustiveStrategy struct {
	source      FilingSource
	universe    UniverseFeed
	budget      *budget.Budget
	concurrency int
	threshold   float64
	log         *zap.SugaredLogger
}

// NewExhaustiveStrategy creates the fallback scan strategy.
func NewExhaustiveStrategy(source FilingSource, universe UniverseFeed, b *budget.Budget, concurrency int, threshold float64, log *zap.SugaredLogger) *ExhaustiveStrategy {
	if concurrency <= 0 {
		concurrency = 8
	}
	if threshold <= 0 {
		threshold = MatchThreshold
	}
	return &ExhaustiveStrategy{
		source:      source,
		universe:    universe,
		budget:      b,
		concurrency: concurrency,
		threshold:   threshold,
		log:         log,
	}
}

// Scan iterates the entity universe (truncated to entityLimit when > 0),
// concurrently fetching and scoring each entity's recent filer names with up
// to concurrency workers (0 = the configured default). A single entity's
// failure is recorded and excluded from matches; it never aborts the scan.
// Both the matches and the per-entity errors are returned so callers can
// report partial coverage explicitly. The returned error is non-nil only
// when the universe feed itself could not be read.
func (s *ExhaustiveStrategy) Scan(ctx context.Context, variants []string, entityLimit, concurrency int) ([]CandidateMatch, []EntityFetchError, error) {
	if concurrency <= 0 {
		concurrency = s.concurrency
	}
	if err := s.budget.Acquire(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "universe feed fetch")
	}
	entities, err := s.universe.Companies(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "universe feed fetch")
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].Rank < entities[j].Rank })
	if entityLimit > 0 && entityLimit < len(entities) {
		entities = entities[:entityLimit]
	}

	s.log.Infow("Starting exhaustive scan",
		"entities", len(entities), "workers", concurrency, "variants", len(variants))

	var mu sync.Mutex
	var matches []CandidateMatch
	var fetchErrors []EntityFetchError

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, entity := range entities {
		if gctx.Err() != nil {
			// Deadline hit: stop dispatching, record skipped entities
			mu.Lock()
			fetchErrors = append(fetchErrors, EntityFetchError{Entity: entity, Reason: "timeout"})
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			entityMatches, fetchErr := s.scanEntity(gctx, variants, entity)

			mu.Lock()
			defer mu.Unlock()
			if fetchErr != nil {
				fetchErrors = append(fetchErrors, *fetchErr)
				return nil // isolation: one entity's failure is not the scan's
			}
			matches = append(matches, entityMatches...)
			return nil
		})
	}

	g.Wait()

	// Completion order varies; sorted output keeps aggregation deterministic
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Entity.CIK != matches[j].Entity.CIK {
			return matches[i].Entity.CIK < matches[j].Entity.CIK
		}
		return matches[i].FilerName < matches[j].FilerName
	})
	sort.Slice(fetchErrors, func(i, j int) bool {
		return fetchErrors[i].Entity.CIK < fetchErrors[j].Entity.CIK
	})

	s.log.Infow("Exhaustive scan complete",
		"matches", len(matches), "errors", len(fetchErrors))

	return matches, fetchErrors, nil
}

// scanEntity fetches and scores one entity's recent filer names. No fetch
// is started once the deadline has expired; a worker that was already
// waiting on its limit slot when the deadline hit bails out here.
func (s *ExhaustiveStrategy) scanEntity(ctx context.Context, variants []string, entity Entity) ([]CandidateMatch, *EntityFetchError) {
	if ctx.Err() != nil {
		return nil, &EntityFetchError{Entity: entity, Reason: "timeout"}
	}

	if err := s.budget.Acquire(ctx); err != nil {
		reason := "rate budget acquire failed"
		if errors.IsTimeout(err) || ctx.Err() != nil {
			reason = "timeout"
		}
		return nil, &EntityFetchError{Entity: entity, Reason: reason}
	}

	records, err := s.source.RecentFilers(ctx, entity.CIK)
	if err != nil {
		reason := err.Error()
		if ctx.Err() != nil {
			// An in-flight fetch cut off by the deadline, whatever error
			// text the source surfaced it with
			reason = "timeout"
		}
		s.log.Debugw("Entity fetch failed", "cik", entity.CIK, "error", err)
		return nil, &EntityFetchError{Entity: entity, Reason: reason}
	}

	// Group evidence per distinct filer name before scoring
	byFiler := make(map[string][]FilingEvidence)
	for _, rec := range records {
		byFiler[rec.Name] = append(byFiler[rec.Name], FilingEvidence{Filed: rec.Filed})
	}

	var matches []CandidateMatch
	for filerName, evidence := range byFiler {
		score := Score(variants, filerName)
		if score < s.threshold {
			continue
		}
		matches = append(matches, CandidateMatch{
			Entity:     entity,
			FilerName:  filerName,
			Confidence: score,
			Evidence:   evidence,
		})
	}

	return matches, nil
}
