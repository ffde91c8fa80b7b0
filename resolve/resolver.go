package resolve

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fintrace/insider/errors"
)

// Options control one resolution call.
type Options struct {
	// FallbackOnEmpty runs the exhaustive scan even when indexed search
	// succeeded with zero matches; an empty indexed answer is not
	// conclusive given indexing lag.
	FallbackOnEmpty bool
	// EntityLimit truncates the exhaustive scan universe to its top N by
	// size ranking. 0 means the full universe.
	EntityLimit int
	// Deadline bounds the whole resolution call.
	Deadline time.Duration
	// Concurrency overrides the exhaustive scan worker count for this call.
	// 0 means the wired default.
	Concurrency int
}

// DefaultOptions returns the caller-facing defaults.
func DefaultOptions() Options {
	return Options{
		FallbackOnEmpty: true,
		EntityLimit:     0,
		Deadline:        60 * time.Second,
	}
}

// Resolver coordinates normalization, cache lookup, strategy selection and
// fallback, aggregation, and cache write-back. The only component exposed
// to callers.
type Resolver struct {
	indexed    *IndexedStrategy
	exhaustive *ExhaustiveStrategy
	cache      IdentityCache // may be nil

	currentWindow time.Duration // evidence newer than this = current position
	formerWindow  time.Duration // evidence older than this = former position

	inflight singleflight.Group // coalesces concurrent calls for the same key
	timeNow  func() time.Time
	log      *zap.SugaredLogger
}

// NewResolver wires the orchestrator. cache may be nil to disable caching.
func NewResolver(indexed *IndexedStrategy, exhaustive *ExhaustiveStrategy, cache IdentityCache, currentWindow, formerWindow time.Duration, log *zap.SugaredLogger) *Resolver {
	if currentWindow <= 0 {
		currentWindow = 365 * 24 * time.Hour
	}
	if formerWindow <= 0 {
		formerWindow = 730 * 24 * time.Hour
	}
	return &Resolver{
		indexed:       indexed,
		exhaustive:    exhaustive,
		cache:         cache,
		currentWindow: currentWindow,
		formerWindow:  formerWindow,
		timeNow:       time.Now,
		log:           log,
	}
}

// Resolve maps a raw human name to its canonical insider identity. The only
// hard failure is an unparseable query; everything else degrades to a
// partial or empty result with diagnostics attached, so callers can tell
// "no positions" from "could not fully search".
func (r *Resolver) Resolve(ctx context.Context, name string, opts Options) (*ResolvedIdentity, error) {
	key := CanonicalKey(name)
	if key == "" {
		return nil, errors.NewInvalidQuery("empty query name")
	}

	if r.cache != nil {
		if identity, ok := r.cache.Get(key); ok {
			r.log.Debugw("Cache hit", "key", key)
			return identity, nil
		}
	}

	variants := Normalize(name)
	if len(variants) == 0 {
		return nil, errors.NewInvalidQuery("no name tokens in %q", name)
	}

	// Coalesce identical in-flight queries; the cache alone does not stop
	// two concurrent calls from both doing the network work. Coalescing is
	// keyed on the name alone, like the cache: a waiter with different
	// Options shares the first caller's answer for this key.
	result, err, _ := r.inflight.Do(key, func() (interface{}, error) {
		return r.resolve(ctx, key, variants, opts)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ResolvedIdentity), nil
}

func (r *Resolver) resolve(ctx context.Context, key string, variants []string, opts Options) (*ResolvedIdentity, error) {
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	diag := Diagnostics{
		ResolutionID:  uuid.NewString(),
		VariantsTried: variants,
	}

	var matches []CandidateMatch

	diag.StrategiesAttempted = append(diag.StrategiesAttempted, "indexed")
	indexedMatches, indexedErr := r.indexed.Search(ctx, variants)
	switch {
	case errors.IsSearchUnavailable(indexedErr):
		r.log.Warnw("Indexed search unavailable, falling back to exhaustive scan",
			"key", key, "error", indexedErr)
	case indexedErr != nil:
		// Search only fails with SearchUnavailable; anything else is a bug
		// in the strategy, but fallback still gives the caller an answer.
		r.log.Errorw("Indexed search failed unexpectedly", "key", key, "error", indexedErr)
	default:
		matches = indexedMatches
	}

	runExhaustive := indexedErr != nil || (len(matches) == 0 && opts.FallbackOnEmpty)
	if runExhaustive {
		diag.StrategiesAttempted = append(diag.StrategiesAttempted, "exhaustive")
		scanMatches, fetchErrors, scanErr := r.exhaustive.Scan(ctx, variants, opts.EntityLimit, opts.Concurrency)
		diag.EntityErrors = fetchErrors
		if scanErr != nil {
			r.log.Errorw("Exhaustive scan failed", "key", key, "error", scanErr)
			diag.EntityErrors = append(diag.EntityErrors, EntityFetchError{
				Reason: scanErr.Error(),
			})
		}
		matches = append(matches, scanMatches...)
	}

	identity := r.aggregate(key, matches, diag)

	if r.cache != nil {
		r.cache.Put(key, identity)
	}

	return identity, nil
}

// aggregate merges candidate matches into the final identity: deduplicated
// by entity CIK keeping the highest confidence per entity, classified by
// recency of evidence, insensitive to the order matches arrived in.
func (r *Resolver) aggregate(key string, matches []CandidateMatch, diag Diagnostics) *ResolvedIdentity {
	now := r.timeNow()

	best := make(map[string]CandidateMatch)
	evidence := make(map[string][]FilingEvidence)
	for _, m := range matches {
		evidence[m.Entity.CIK] = append(evidence[m.Entity.CIK], m.Evidence...)
		cur, ok := best[m.Entity.CIK]
		if !ok || m.Confidence > cur.Confidence {
			best[m.Entity.CIK] = m
		}
	}

	var affiliations []Affiliation
	confidence := 0.0
	for cik, m := range best {
		lastSeen := time.Time{}
		for _, ev := range evidence[cik] {
			if ev.Filed.After(lastSeen) {
				lastSeen = ev.Filed
			}
		}

		affiliations = append(affiliations, Affiliation{
			Entity:     m.Entity,
			FilerName:  m.FilerName,
			Confidence: m.Confidence,
			Status:     r.classify(lastSeen, now),
			Evidence:   evidence[cik],
			LastSeen:   lastSeen,
		})
		if m.Confidence > confidence {
			confidence = m.Confidence
		}
	}

	// Most recent activity first; CIK breaks ties so the result is the
	// same regardless of which worker finished first
	sort.Slice(affiliations, func(i, j int) bool {
		if !affiliations[i].LastSeen.Equal(affiliations[j].LastSeen) {
			return affiliations[i].LastSeen.After(affiliations[j].LastSeen)
		}
		return affiliations[i].Entity.CIK < affiliations[j].Entity.CIK
	})

	return &ResolvedIdentity{
		CanonicalName: canonicalName(key),
		Affiliations:  affiliations,
		Confidence:    confidence,
		Diagnostics:   diag,
		ResolvedAt:    now,
	}
}

// classify tags an affiliation by the age of its most recent evidence.
func (r *Resolver) classify(lastSeen, now time.Time) PositionStatus {
	if lastSeen.IsZero() {
		return PositionUnknown
	}
	age := now.Sub(lastSeen)
	switch {
	case age <= r.currentWindow:
		return PositionCurrent
	case age >= r.formerWindow:
		return PositionFormer
	default:
		return PositionUnknown
	}
}
