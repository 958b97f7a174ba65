package recommend

import (
	"fmt"
	"sort"

	"github.com/powder-labs/powder/internal/model"
)

// Scorer computes the bounded appeal score for enriched candidates. Given
// identical (candidate, constraints, day context) inputs it always produces
// an identical score.
type Scorer struct {
	cfg ScoreConfig
}

// NewScorer creates a scoring engine for the given weight/threshold profile.
func NewScorer(cfg ScoreConfig) *Scorer {
	// Tiers must be checked highest-first regardless of profile order.
	// Sort a copy so the caller's profile is left untouched.
	tiers := make([]SnowTier, len(cfg.SnowTiers))
	copy(tiers, cfg.SnowTiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinCM > tiers[j].MinCM
	})
	cfg.SnowTiers = tiers
	return &Scorer{cfg: cfg}
}

// Config returns the profile the scorer was built with.
func (s *Scorer) Config() ScoreConfig { return s.cfg }

// Score computes the appeal score in [0,100] for one candidate. Pure: no
// clock, no randomness, no I/O.
func (s *Scorer) Score(c model.Candidate, cs model.ConstraintSet, day model.DayContext) model.ScoredCandidate {
	var bd model.ScoreBreakdown

	cond := c.Conditions
	if cond != nil {
		bd.FreshSnow = s.cfg.Weights.FreshSnow * s.snowPoints(cond.FreshSnow24hCM)
		bd.Comfort = s.cfg.Weights.Comfort * s.comfortPoints(*cond)
		bd.Boosts = s.boostPoints(c, *cond)
	}
	bd.TerrainFit = s.cfg.Weights.Terrain * s.terrainFit(c.Mountain, cs)
	bd.Value = s.cfg.Weights.Value * s.valuePoints(c.Mountain, cs)
	bd.DrivePenalty = -s.cfg.Weights.Drive * s.drivePenalty(c)

	total := bd.FreshSnow + bd.Comfort + bd.TerrainFit + bd.Value + bd.DrivePenalty + bd.Boosts
	if c.Degraded {
		total -= s.cfg.DegradedPenalty
	}

	sc := model.ScoredCandidate{
		Candidate: c,
		Score:     clamp(total, 0, 100),
		Breakdown: bd,
	}
	sc.Pros, sc.Cons = s.prosCons(c, cs)
	sc.TradeoffNote = s.tradeoff(c, day)
	return sc
}

// snowPoints awards the first matching tier's fixed value.
func (s *Scorer) snowPoints(freshCM float64) float64 {
	for _, t := range s.cfg.SnowTiers {
		if freshCM >= t.MinCM {
			return t.Points
		}
	}
	return 0
}

// comfortPoints starts at the maximum and drains linearly for temperatures
// outside the ideal band and winds above the calm threshold.
func (s *Scorer) comfortPoints(cond model.Conditions) float64 {
	pts := s.cfg.ComfortMax

	switch {
	case cond.TempC < s.cfg.IdealTempMinC:
		pts -= (s.cfg.IdealTempMinC - cond.TempC) * s.cfg.TempFalloffPerC
	case cond.TempC > s.cfg.IdealTempMaxC:
		pts -= (cond.TempC - s.cfg.IdealTempMaxC) * s.cfg.TempFalloffPerC
	}

	if cond.WindKPH > s.cfg.CalmWindKPH {
		pts -= (cond.WindKPH - s.cfg.CalmWindKPH) * s.cfg.WindFalloffPerK
	}

	if cond.IsRainy() {
		pts = 0
	}

	return clamp(pts, 0, s.cfg.ComfortMax)
}

// terrainFit maps the skier's level and vibe onto the candidate's trail mix.
func (s *Scorer) terrainFit(m model.Mountain, cs model.ConstraintSet) float64 {
	maxFit := s.cfg.TerrainFitMax

	switch cs.Vibe {
	case "park_day":
		if m.HasTerrainParks() {
			return maxFit
		}
		return 0
	case "learning", "family_day":
		if m.HasBeginnerTerrain() {
			return maxFit
		}
		return maxFit * 0.3
	}

	switch cs.SkillLevel {
	case "beginner":
		return clamp(float64(m.GreenPct)*0.5, 0, maxFit)
	case "intermediate":
		return clamp(float64(m.BluePct)*0.3, 0, maxFit)
	case "advanced":
		return clamp(float64(m.BlackPct+m.DoubleBlackPct)*0.35, 0, maxFit)
	case "expert":
		return clamp(float64(m.DoubleBlackPct)*1.2, 0, maxFit)
	default:
		// No stated skill: neutral credit so fit never dominates.
		return maxFit * 0.5
	}
}

// valuePoints rewards below-base ticket prices. Unknown price is neutral.
func (s *Scorer) valuePoints(m model.Mountain, cs model.ConstraintSet) float64 {
	price := m.AvgWeekdayPrice
	if !cs.TargetDate.IsZero() {
		if wd := cs.TargetDate.Weekday(); wd == 0 || wd == 6 {
			price = m.AvgWeekendPrice
		}
	}
	if price <= 0 {
		return s.cfg.ValueMax / 2
	}
	return clamp(s.cfg.ValueMax-(float64(price)-s.cfg.ValueBasePrice)*s.cfg.ValuePerDollar, 0, s.cfg.ValueMax)
}

// drivePenalty is monotone non-increasing in drive time and capped; it never
// excludes. Falls back to the distance-derived estimate when routing data is
// missing.
func (s *Scorer) drivePenalty(c model.Candidate) float64 {
	minutes := c.DriveMinutesOrEstimate()
	if minutes <= s.cfg.DriveFreeMinutes {
		return 0
	}
	pen := (minutes - s.cfg.DriveFreeMinutes) * s.cfg.DrivePerMinute
	return clamp(pen, 0, s.cfg.DriveMaxPenalty)
}

// boostPoints applies the contextual boost table: each boost fires only when
// its live-condition trigger and the candidate feature both hold.
func (s *Scorer) boostPoints(c model.Candidate, cond model.Conditions) float64 {
	var pts float64

	if cond.WindKPH >= s.cfg.WindShelterBoost.Trigger && c.HasGlades() {
		pts += s.cfg.WindShelterBoost.Points
	}
	if cond.TempC <= s.cfg.ColdShelterBoost.Trigger && c.HasEnclosedLift() {
		pts += s.cfg.ColdShelterBoost.Points
	}
	if cond.FreshSnow24hCM >= s.cfg.PowderGladesBoost.Trigger && c.HasGlades() {
		pts += s.cfg.PowderGladesBoost.Points
	}
	if cond.SnowDepthCM < s.cfg.SnowmakingBoost.Trigger && c.SnowmakingPct >= s.cfg.SnowmakingMinPct {
		pts += s.cfg.SnowmakingBoost.Points
	}

	return pts
}

func (s *Scorer) prosCons(c model.Candidate, cs model.ConstraintSet) (pros, cons []string) {
	if c.Conditions != nil {
		cond := c.Conditions
		if cond.FreshSnow24hCM >= 10 {
			pros = append(pros, fmt.Sprintf("%.0f\" fresh snow in the last 24h", cond.FreshSnowIn()))
		} else if cond.FreshSnow24hCM == 0 {
			cons = append(cons, "no fresh snow")
		}
		if cond.WindKPH >= 40 {
			cons = append(cons, fmt.Sprintf("high winds (%.0f mph) may hold lifts", cond.WindMPH()))
		}
		if cond.TempC > 3 {
			cons = append(cons, fmt.Sprintf("warm (%.0f°F), expect soft then icy snow", cond.TempF()))
		}
		if cond.TempC <= -18 {
			cons = append(cons, fmt.Sprintf("bitter cold (%.0f°F)", cond.TempF()))
		}
	} else if c.Degraded {
		cons = append(cons, "conditions unavailable: "+c.DegradedReason)
	}

	minutes := c.DriveMinutesOrEstimate()
	switch {
	case minutes > 0 && minutes <= 60:
		pros = append(pros, fmt.Sprintf("short drive (%.0f min)", minutes))
	case minutes >= 180:
		cons = append(cons, fmt.Sprintf("long drive (%.1f h)", minutes/60))
	}

	if c.HasGlades() {
		pros = append(pros, "gladed terrain")
	}
	if cs.Vibe == "park_day" && c.HasTerrainParks() {
		pros = append(pros, "terrain parks")
	}
	if c.HasNightSkiing {
		pros = append(pros, "night skiing")
	}
	return pros, cons
}

func (s *Scorer) tradeoff(c model.Candidate, day model.DayContext) string {
	minutes := c.DriveMinutesOrEstimate()
	fresh := 0.0
	if c.Conditions != nil {
		fresh = c.Conditions.FreshSnow24hCM
	}
	switch {
	case fresh >= 20 && minutes >= 150:
		return "best snow of the day but one of the longest drives"
	case fresh < 5 && minutes <= 60:
		return "closest option, but conditions are unremarkable"
	case day.Mode == model.ModeMinimizeEffort && minutes >= 120:
		return "a long haul for a day that does not reward it"
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
