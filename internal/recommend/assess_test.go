package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/powder-labs/powder/internal/model"
)

func condCandidate(id int64, name string, fresh, depth, temp, wind float64) model.Candidate {
	return model.Candidate{
		Mountain: model.Mountain{ID: id, Name: name, State: "VT"},
		Conditions: &model.Conditions{
			FreshSnow24hCM: fresh,
			SnowDepthCM:    depth,
			TempC:          temp,
			WindKPH:        wind,
			WeatherCode:    71,
		},
	}
}

func TestAssessNoEnrichedStaysNeutral(t *testing.T) {
	cands := []model.Candidate{
		{Mountain: model.Mountain{ID: 1, Name: "Stowe"}, Degraded: true},
		{Mountain: model.Mountain{ID: 2, Name: "Loon"}, Degraded: true},
	}

	day := AssessDay(cands, model.ConstraintSet{})
	assert.Equal(t, model.DayFair, day.Quality)
	assert.Equal(t, model.ModeEnjoyNearby, day.Mode)
	assert.NotEqual(t, model.ModePostpone, day.Mode)
}

func TestAssessExcellentPowderDay(t *testing.T) {
	cands := []model.Candidate{
		condCandidate(1, "Stowe", 28, 120, -8, 15),
		condCandidate(2, "Loon", 5, 60, -6, 10),
	}

	day := AssessDay(cands, model.ConstraintSet{})
	assert.Equal(t, model.DayExcellent, day.Quality)
	assert.Equal(t, model.ModeChaseQuality, day.Mode)
	assert.Equal(t, int64(1), day.BestCandidateID)
	assert.Contains(t, day.Rationale, "Stowe")
}

func TestAssessExcellentGateRejectsWindAndWarmth(t *testing.T) {
	// Plenty of snow but howling wind: good, not excellent.
	windy := []model.Candidate{condCandidate(1, "Jay Peak", 25, 150, -8, 55)}
	day := AssessDay(windy, model.ConstraintSet{})
	assert.Equal(t, model.DayGood, day.Quality)

	tooCold := []model.Candidate{condCandidate(1, "Jay Peak", 25, 150, -20, 10)}
	day = AssessDay(tooCold, model.ConstraintSet{})
	assert.Equal(t, model.DayGood, day.Quality)
}

func TestAssessGoodDayChaseVsNearby(t *testing.T) {
	// One clear standout justifies the drive.
	spread := []model.Candidate{
		condCandidate(1, "Sugarloaf", 18, 100, -20, 10), // cold blocks excellent
		condCandidate(2, "Gunstock", 2, 50, -5, 5),
		condCandidate(3, "Pats Peak", 3, 45, -5, 5),
	}
	day := AssessDay(spread, model.ConstraintSet{})
	assert.Equal(t, model.DayGood, day.Quality)
	assert.Equal(t, model.ModeChaseQuality, day.Mode)

	// Everyone got roughly the same refresh: stay close.
	flat := []model.Candidate{
		condCandidate(1, "Sugarloaf", 12, 100, -20, 10),
		condCandidate(2, "Gunstock", 9, 50, -5, 5),
		condCandidate(3, "Pats Peak", 8, 45, -5, 5),
	}
	day = AssessDay(flat, model.ConstraintSet{})
	assert.Equal(t, model.DayGood, day.Quality)
	assert.Equal(t, model.ModeEnjoyNearby, day.Mode)
}

func TestAssessSkipDayPostpones(t *testing.T) {
	// Thin cover, rain, and a deep freeze: nobody is worth visiting.
	cands := []model.Candidate{
		condCandidate(1, "Wachusett", 0, 15, 2, 10),  // thin base
		condCandidate(2, "Nashoba", 0, 30, 5, 10),    // thaw with no fresh
		condCandidate(3, "Sunapee", 0, 80, -28, 10),  // extreme cold
	}
	cands[1].Conditions.WeatherCode = 63 // rain

	day := AssessDay(cands, model.ConstraintSet{})
	assert.Equal(t, model.DaySkip, day.Quality)
	assert.Equal(t, model.ModePostpone, day.Mode)
}

func TestAssessFairOnHoldableBase(t *testing.T) {
	cands := []model.Candidate{
		condCandidate(1, "Okemo", 0, 70, -4, 10),
		condCandidate(2, "Magic", 0, 20, -4, 10),
	}

	day := AssessDay(cands, model.ConstraintSet{})
	assert.Equal(t, model.DayFair, day.Quality)
	assert.Equal(t, model.ModeEnjoyNearby, day.Mode)
}

func TestAssessPoorDayMinimizesEffort(t *testing.T) {
	cands := []model.Candidate{
		condCandidate(1, "Thin Hill", 1, 28, -3, 10),
	}

	day := AssessDay(cands, model.ConstraintSet{})
	assert.Equal(t, model.DayPoor, day.Quality)
	assert.Equal(t, model.ModeMinimizeEffort, day.Mode)
}
