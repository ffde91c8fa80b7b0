// Package resolve turns a human name into a canonical insider identity: the
// set of corporate entities at which that person holds or held a reporting
// role, aggregated across a filing corpus that has no person-level index and
// spells the same person differently from filing to filing.
package resolve

import (
	"context"
	"time"
)

// Entity identifies a filer (a company) in the corpus.
type Entity struct {
	CIK    string `json:"cik"` // 10-digit zero-padded identifier, unique and stable
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
	Rank   int    `json:"rank,omitempty"` // size ordinal from the universe feed; lower = larger
}

// FilingRef is one filing reference returned by the indexed search surface,
// attributable to a single entity and carrying the filer name as filed.
type FilingRef struct {
	AccessionNo string    `json:"accession_no"`
	EntityCIK   string    `json:"entity_cik"`
	EntityName  string    `json:"entity_name"`
	FilerName   string    `json:"filer_name"`
	Filed       time.Time `json:"filed"`
}

// FilerRecord is one reporting-owner name on an entity's own filings.
type FilerRecord struct {
	Name  string    `json:"name"`
	Filed time.Time `json:"filed"`
}

// FilingEvidence records which filing produced a match.
type FilingEvidence struct {
	AccessionNo string    `json:"accession_no,omitempty"`
	Filed       time.Time `json:"filed"`
}

// CandidateMatch pairs an entity with a filer-name string that scored against
// the query variants. Ephemeral; produced during one resolution. Two filer
// names at the same entity scoring identically are retained as separate
// matches so ambiguity is surfaced rather than silently collapsed.
type CandidateMatch struct {
	Entity     Entity
	FilerName  string
	Confidence float64
	Evidence   []FilingEvidence
}

// PositionStatus classifies an affiliation by recency of evidence.
type PositionStatus string

const (
	PositionCurrent PositionStatus = "current"
	PositionFormer  PositionStatus = "former"
	PositionUnknown PositionStatus = "unknown"
)

// Affiliation is one entity in a resolved identity.
type Affiliation struct {
	Entity     Entity           `json:"entity"`
	FilerName  string           `json:"filer_name"`
	Confidence float64          `json:"confidence"`
	Status     PositionStatus   `json:"status"`
	Evidence   []FilingEvidence `json:"evidence,omitempty"`
	LastSeen   time.Time        `json:"last_seen"`
}

// EntityFetchError records a single entity whose fetch failed during a scan.
// Isolated: it never aborts the scan, only narrows its coverage.
type EntityFetchError struct {
	Entity Entity `json:"entity"`
	Reason string `json:"reason"`
}

// Diagnostics describes how a resolution was performed, so callers can
// distinguish "no positions" from "could not fully search".
type Diagnostics struct {
	ResolutionID        string             `json:"resolution_id"`
	VariantsTried       []string           `json:"variants_tried"`
	StrategiesAttempted []string           `json:"strategies_attempted"`
	EntityErrors        []EntityFetchError `json:"entity_errors,omitempty"`
	EntitiesScanned     int                `json:"entities_scanned,omitempty"`
}

// ResolvedIdentity is the externally visible result of one resolution.
// Immutable once returned. Affiliations are deduplicated by entity CIK,
// each retaining the highest-confidence match for that entity.
type ResolvedIdentity struct {
	CanonicalName string        `json:"canonical_name"`
	Affiliations  []Affiliation `json:"affiliations"`
	Confidence    float64       `json:"confidence"`
	Diagnostics   Diagnostics   `json:"diagnostics"`
	ResolvedAt    time.Time     `json:"resolved_at"`
}

// Found reports whether the resolution produced any affiliation.
func (r *ResolvedIdentity) Found() bool {
	return len(r.Affiliations) > 0
}

// CurrentAffiliations returns only affiliations classified as current.
func (r *ResolvedIdentity) CurrentAffiliations() []Affiliation {
	var current []Affiliation
	for _, a := range r.Affiliations {
		if a.Status == PositionCurrent {
			current = append(current, a)
		}
	}
	return current
}

// SearchIndex is the indexed full-text search surface over the filing corpus.
// Implementations must return an error wrapping errors.ErrSearchUnavailable
// when the surface is unreachable, errors, or returns an uninterpretable
// shape; a successful empty result is not an error.
type SearchIndex interface {
	SearchFilings(ctx context.Context, term string) ([]FilingRef, error)
}

// FilingSource fetches the recent reporting-owner names on one entity's
// filings. Failures are per-entity and isolated by the caller.
type FilingSource interface {
	RecentFilers(ctx context.Context, cik string) ([]FilerRecord, error)
}

// UniverseFeed enumerates the known entities, ordered by size ranking.
type UniverseFeed interface {
	Companies(ctx context.Context) ([]Entity, error)
}

// IdentityCache stores resolved (and negative) results keyed by canonical
// query string. The cache is an optimization, not a mutual-exclusion
// mechanism; implementations decide TTL policy.
type IdentityCache interface {
	Get(key string) (*ResolvedIdentity, bool)
	Put(key string, identity *ResolvedIdentity)
}
