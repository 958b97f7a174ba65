package recommend

import (
	"fmt"
	"sort"

	"github.com/powder-labs/powder/internal/model"
)

// Day-assessment thresholds. These classify the whole candidate set, not a
// single mountain, so they live apart from the per-candidate score profile.
const (
	excellentFreshCM  = 15
	goodFreshCM       = 8
	chaseSpreadCM     = 10 // best fresh must beat the median by this to justify driving past closer hills
	excellentWindKPH  = 40
	excellentTempMinC = -15
	excellentTempMaxC = 0
	thinBaseCM        = 25
	holdableBaseCM    = 40
	extremeColdC      = -25
	thawTempC         = 4
)

// AssessDay classifies overall conditions across the full enriched candidate
// set into one DayContext. Computed once per query; it is what lets the
// ranker return "postponed" instead of a forced best-effort pick.
func AssessDay(cands []model.Candidate, cs model.ConstraintSet) model.DayContext {
	enriched := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Conditions != nil {
			enriched = append(enriched, c)
		}
	}

	if len(enriched) == 0 {
		// With no live data at all we can justify neither chasing nor
		// postponing; stay neutral and rank on static attributes.
		return model.DayContext{
			Quality:   model.DayFair,
			Mode:      model.ModeEnjoyNearby,
			Rationale: "no live conditions available; ranking on static attributes only",
		}
	}

	best := enriched[0]
	for _, c := range enriched[1:] {
		if c.Conditions.FreshSnow24hCM > best.Conditions.FreshSnow24hCM {
			best = c
		}
	}

	if allDegradedConditions(enriched) {
		return model.DayContext{
			Quality:         model.DaySkip,
			Mode:            model.ModePostpone,
			Rationale:       "every reachable mountain has thin cover, rain, or extreme temperatures",
			BestCandidateID: best.ID,
		}
	}

	bc := best.Conditions
	if bc.FreshSnow24hCM >= excellentFreshCM &&
		bc.TempC >= excellentTempMinC && bc.TempC <= excellentTempMaxC &&
		bc.WindKPH < excellentWindKPH {
		return model.DayContext{
			Quality:         model.DayExcellent,
			Mode:            model.ModeChaseQuality,
			Rationale:       bestAvailableNote(best, enriched),
			BestCandidateID: best.ID,
		}
	}

	if bc.FreshSnow24hCM >= goodFreshCM {
		mode := model.ModeEnjoyNearby
		if bc.FreshSnow24hCM-medianFresh(enriched) >= chaseSpreadCM {
			mode = model.ModeChaseQuality
		}
		return model.DayContext{
			Quality:         model.DayGood,
			Mode:            mode,
			Rationale:       bestAvailableNote(best, enriched),
			BestCandidateID: best.ID,
		}
	}

	// No meaningful fresh snow: fair if somebody holds a skiable base at
	// sane temperatures, poor otherwise.
	for _, c := range enriched {
		holdable := c.Conditions.SnowDepthCM >= holdableBaseCM ||
			(c.SnowmakingPct >= 70 && c.Conditions.TempC < 2)
		if holdable && !c.Conditions.IsRainy() {
			mode := model.ModeEnjoyNearby
			if c.Conditions.TempC > thawTempC {
				mode = model.ModeMinimizeEffort
			}
			return model.DayContext{
				Quality:         model.DayFair,
				Mode:            mode,
				Rationale:       "no fresh snow; groomed base is the best on offer",
				BestCandidateID: best.ID,
			}
		}
	}

	return model.DayContext{
		Quality:         model.DayPoor,
		Mode:            model.ModeMinimizeEffort,
		Rationale:       "marginal cover everywhere; keep the outing short",
		BestCandidateID: best.ID,
	}
}

// allDegradedConditions reports whether every enriched candidate shows a
// degraded-conditions signature: thin cover, rain or a thaw with no fresh
// snow, or temperatures nobody should ride in.
func allDegradedConditions(enriched []model.Candidate) bool {
	for _, c := range enriched {
		cond := c.Conditions
		bad := cond.SnowDepthCM < thinBaseCM ||
			cond.IsRainy() ||
			(cond.TempC >= thawTempC && cond.FreshSnow24hCM == 0) ||
			cond.TempC <= extremeColdC ||
			cond.TempC >= 10
		if !bad {
			return false
		}
	}
	return true
}

func medianFresh(enriched []model.Candidate) float64 {
	vals := make([]float64, len(enriched))
	for i, c := range enriched {
		vals[i] = c.Conditions.FreshSnow24hCM
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func bestAvailableNote(best model.Candidate, enriched []model.Candidate) string {
	others := 0.0
	for _, c := range enriched {
		if c.ID != best.ID && c.Conditions.FreshSnow24hCM > others {
			others = c.Conditions.FreshSnow24hCM
		}
	}
	return fmt.Sprintf("%s has %.0f\" fresh, next best %.0f\"",
		best.Name, best.Conditions.FreshSnowIn(), others/2.54)
}
