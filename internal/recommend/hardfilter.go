package recommend

import (
	"fmt"

	"github.com/powder-labs/powder/internal/model"
)

// Predicate is a single compiled hard-filter check over static attributes.
type Predicate struct {
	Name string
	Fn   func(model.Mountain) bool
}

// Predicates is a conjunctive set of hard-filter checks.
type Predicates []Predicate

// CompileHardFilters translates each non-nil hard-filter field of the
// constraint set into a predicate. An unset field compiles to no predicate at
// all: absence must short-circuit to "always true". Conflating "unspecified"
// with "specified-and-false" would silently empty the candidate set.
//
// MaxDriveHours is deliberately absent here: the geographic prefilter applies
// its coarse version and the ranker enforces it exactly.
func CompileHardFilters(cs model.ConstraintSet) Predicates {
	var preds Predicates

	if cs.PassType != nil {
		pass := *cs.PassType
		preds = append(preds, Predicate{
			Name: fmt.Sprintf("pass_type=%s", pass),
			Fn:   func(m model.Mountain) bool { return m.HasPass(pass) },
		})
	}
	if cs.NeedsTerrainParks != nil && *cs.NeedsTerrainParks {
		preds = append(preds, Predicate{
			Name: "needs_terrain_parks",
			Fn:   model.Mountain.HasTerrainParks,
		})
	}
	if cs.NeedsGlades != nil && *cs.NeedsGlades {
		preds = append(preds, Predicate{
			Name: "needs_glades",
			Fn:   model.Mountain.HasGlades,
		})
	}
	if cs.NeedsNightSkiing != nil && *cs.NeedsNightSkiing {
		preds = append(preds, Predicate{
			Name: "needs_night_skiing",
			Fn:   func(m model.Mountain) bool { return m.HasNightSkiing },
		})
	}
	if cs.NeedsBeginner != nil && *cs.NeedsBeginner {
		preds = append(preds, Predicate{
			Name: "needs_beginner_terrain",
			Fn:   model.Mountain.HasBeginnerTerrain,
		})
	}
	if cs.NeedsExpert != nil && *cs.NeedsExpert {
		preds = append(preds, Predicate{
			Name: "needs_expert_terrain",
			Fn:   model.Mountain.HasExpertTerrain,
		})
	}
	if cs.AllowsSnowboarding != nil && *cs.AllowsSnowboarding {
		preds = append(preds, Predicate{
			Name: "allows_snowboarding",
			Fn:   func(m model.Mountain) bool { return m.AllowsSnowboarding },
		})
	}

	return preds
}

// Match evaluates all predicates against a mountain. On failure it returns
// the name of the first violated predicate for diagnostics.
func (ps Predicates) Match(m model.Mountain) (bool, string) {
	for _, p := range ps {
		if !p.Fn(m) {
			return false, p.Name
		}
	}
	return true, ""
}

// Apply filters candidates through the predicate set, recording each removal.
func (ps Predicates) Apply(cands []model.Candidate) ([]model.Candidate, []model.Exclusion) {
	if len(ps) == 0 {
		return cands, nil
	}

	kept := make([]model.Candidate, 0, len(cands))
	var excluded []model.Exclusion
	for _, c := range cands {
		if ok, failed := ps.Match(c.Mountain); !ok {
			excluded = append(excluded, model.Exclusion{
				CandidateID: c.ID,
				Name:        c.Name,
				Reason:      "hard filter: " + failed,
			})
			continue
		}
		kept = append(kept, c)
	}
	return kept, excluded
}
