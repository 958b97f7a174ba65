package model

// DayQuality classifies overall conditions across the full candidate set,
// ordered best to worst. Strict enum so downstream stages never parse prose.
type DayQuality string

const (
	DayExcellent DayQuality = "excellent"
	DayGood      DayQuality = "good"
	DayFair      DayQuality = "fair"
	DayPoor      DayQuality = "poor"
	DaySkip      DayQuality = "skip"
)

// qualityRank orders qualities for comparison; lower is better.
var qualityRank = map[DayQuality]int{
	DayExcellent: 0,
	DayGood:      1,
	DayFair:      2,
	DayPoor:      3,
	DaySkip:      4,
}

// AtLeast reports whether q is the same or better than other.
func (q DayQuality) AtLeast(other DayQuality) bool {
	return qualityRank[q] <= qualityRank[other]
}

// Valid reports whether q is a known quality value.
func (q DayQuality) Valid() bool {
	_, ok := qualityRank[q]
	return ok
}

// RecommendationMode directs how the ranker frames its output.
type RecommendationMode string

const (
	// ModeChaseQuality means conditions justify driving further for the best snow.
	ModeChaseQuality RecommendationMode = "chase_quality"
	// ModeEnjoyNearby means conditions are fine everywhere; proximity wins.
	ModeEnjoyNearby RecommendationMode = "enjoy_nearby"
	// ModeMinimizeEffort means conditions are marginal; keep the outing cheap.
	ModeMinimizeEffort RecommendationMode = "minimize_effort"
	// ModePostpone means no candidate is worth the trip; recommend waiting.
	ModePostpone RecommendationMode = "postpone"
)

// DayContext is the day-level classification computed once per query from the
// full enriched candidate set, never per-candidate.
type DayContext struct {
	Quality DayQuality         `json:"quality"`
	Mode    RecommendationMode `json:"mode"`

	// Rationale is a short factual note, e.g. the best-available standout.
	Rationale string `json:"rationale,omitempty"`

	// BestCandidateID identifies the candidate anchoring the assessment.
	BestCandidateID int64 `json:"best_candidate_id,omitempty"`
}

// CrowdLevel classifies expected crowding for a date and region.
type CrowdLevel string

const (
	CrowdExtreme  CrowdLevel = "extreme"
	CrowdHigh     CrowdLevel = "high"
	CrowdModerate CrowdLevel = "moderate"
	CrowdNormal   CrowdLevel = "normal"
)

// CrowdContext summarizes holiday and vacation-week crowd pressure.
type CrowdContext struct {
	IsHolidayWeekend bool       `json:"is_holiday_weekend"`
	VacationWeek     string     `json:"vacation_week,omitempty"` // "MA/NH", "NY", or empty
	Level            CrowdLevel `json:"level"`
	Note             string     `json:"note"`
}
