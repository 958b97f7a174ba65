package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/powder-labs/powder/internal/model"
)

// Rank orders scored candidates and produces the final machine-checkable
// result. It re-enforces hard constraints against exact values (defense in
// depth: the geographic prefilter is deliberately coarse), attaching every
// removal to diagnostics, and returns typed sentinels for postponed days and
// emptied candidate sets instead of best-effort picks.
func Rank(id string, scored []model.ScoredCandidate, cs model.ConstraintSet, day model.DayContext, crowd *model.CrowdContext, priorExcluded []model.Exclusion) *model.RankedResult {
	res := &model.RankedResult{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		Day:         &day,
		Crowd:       crowd,
		Excluded:    priorExcluded,
	}

	if day.Mode == model.ModePostpone {
		res.Status = model.StatusPostponed
		res.Reason = day.Rationale
		return res
	}

	preds := CompileHardFilters(cs)
	kept := make([]model.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		// Exact drive-time enforcement. A candidate inside the coarse
		// radius can still be far over budget by road; it must not
		// appear anywhere in the output, alternates included.
		if cs.MaxDriveHours != nil {
			minutes := sc.DriveMinutesOrEstimate()
			if minutes > *cs.MaxDriveHours*60 {
				res.Excluded = append(res.Excluded, model.Exclusion{
					CandidateID: sc.ID,
					Name:        sc.Name,
					Reason:      fmt.Sprintf("drive time %.0f min exceeds %.1f h budget", minutes, *cs.MaxDriveHours),
				})
				continue
			}
		}

		if ok, failed := preds.Match(sc.Mountain); !ok {
			res.Excluded = append(res.Excluded, model.Exclusion{
				CandidateID: sc.ID,
				Name:        sc.Name,
				Reason:      "hard filter: " + failed,
			})
			continue
		}

		kept = append(kept, sc)
	}

	if len(kept) == 0 {
		res.Status = model.StatusNoEligible
		res.Reason = fmt.Sprintf("all %d candidates violated hard constraints", len(scored))
		return res
	}

	// Deterministic order: score desc, then shorter drive, then stable ID.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		di, dj := kept[i].DriveMinutesOrEstimate(), kept[j].DriveMinutesOrEstimate()
		if di != dj {
			return di < dj
		}
		return kept[i].ID < kept[j].ID
	})

	res.Status = model.StatusOK
	res.Candidates = kept
	return res
}
