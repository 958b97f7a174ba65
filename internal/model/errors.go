package model

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrMissingCoordinates marks a catalog record without usable coordinates.
// Fatal for that candidate only, never for the query.
var ErrMissingCoordinates = eris.New("model: candidate has no coordinates")

// ErrNoEligibleCandidates is raised when the post-filter candidate set is
// empty. The ranker converts it into an explicit StatusNoEligible result
// rather than presenting an empty list as a valid recommendation.
var ErrNoEligibleCandidates = eris.New("model: no eligible candidates")

// ConstraintParseError reports a malformed constraint value reaching the
// core. Fatal for the single query; the offending field is always named.
type ConstraintParseError struct {
	Field  string
	Reason string
}

func (e *ConstraintParseError) Error() string {
	return fmt.Sprintf("constraint %q: %s", e.Field, e.Reason)
}

// EnrichmentTimeoutError marks a candidate whose live-data fetch timed out
// after bounded retry. The candidate is degraded, not the query.
type EnrichmentTimeoutError struct {
	MountainID int64
	Source     string // "conditions" or "routing"
	Err        error
}

func (e *EnrichmentTimeoutError) Error() string {
	return fmt.Sprintf("enrichment timeout for mountain %d (%s): %v", e.MountainID, e.Source, e.Err)
}

func (e *EnrichmentTimeoutError) Unwrap() error { return e.Err }
