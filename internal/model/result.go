package model

import "time"

// ScoreBreakdown records the contribution of each scoring term so that a
// final score is auditable. Values are post-weight points.
type ScoreBreakdown struct {
	FreshSnow    float64 `json:"fresh_snow"`
	Comfort      float64 `json:"comfort"`
	TerrainFit   float64 `json:"terrain_fit"`
	Value        float64 `json:"value"`
	DrivePenalty float64 `json:"drive_penalty"`
	Boosts       float64 `json:"boosts"`
	JudgeDelta   float64 `json:"judge_delta,omitempty"`
}

// ScoredCandidate pairs a candidate with its appeal score and the human-facing
// pros/cons derived from the same terms. Score is a pure function of
// (candidate, constraints, day context) and lies in [0,100].
type ScoredCandidate struct {
	Candidate

	Score        float64        `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	Pros         []string       `json:"pros,omitempty"`
	Cons         []string       `json:"cons,omitempty"`
	TradeoffNote string         `json:"tradeoff_note,omitempty"`
}

// ResultStatus distinguishes a real recommendation from the explicit
// no-recommendation sentinels. Never detect these via string inspection.
type ResultStatus string

const (
	// StatusOK means the result carries at least one eligible pick.
	StatusOK ResultStatus = "ok"
	// StatusNoEligible means every candidate was filtered out; the reason
	// explains which constraints emptied the set.
	StatusNoEligible ResultStatus = "no_eligible_candidates"
	// StatusPostponed means the day assessment advised against going at all.
	StatusPostponed ResultStatus = "postponed"
)

// Exclusion records a candidate removed by the ranker's defense-in-depth pass
// together with the reason, so removals are diagnosable rather than silent.
type Exclusion struct {
	CandidateID int64  `json:"candidate_id"`
	Name        string `json:"name"`
	Reason      string `json:"reason"`
}

// RankedResult is the machine-checkable output of a recommendation query.
// It is the source of truth; any narrative text is derived from it.
type RankedResult struct {
	ID          string       `json:"id"` // query UUID
	Status      ResultStatus `json:"status"`
	Reason      string       `json:"reason,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`

	Candidates []ScoredCandidate `json:"candidates,omitempty"`
	Excluded   []Exclusion       `json:"excluded,omitempty"`

	Day   *DayContext   `json:"day,omitempty"`
	Crowd *CrowdContext `json:"crowd,omitempty"`
}

// HasPick reports whether the result carries a usable recommendation.
func (r *RankedResult) HasPick() bool {
	return r.Status == StatusOK && len(r.Candidates) > 0
}

// Top1 returns the top pick, or nil for sentinel results.
func (r *RankedResult) Top1() *ScoredCandidate {
	if !r.HasPick() {
		return nil
	}
	return &r.Candidates[0]
}

// TopN returns up to n top candidates in rank order.
func (r *RankedResult) TopN(n int) []ScoredCandidate {
	if !r.HasPick() || n <= 0 {
		return nil
	}
	if n > len(r.Candidates) {
		n = len(r.Candidates)
	}
	return r.Candidates[:n]
}
