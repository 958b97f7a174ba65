package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/crowds"
	"github.com/powder-labs/powder/internal/enrich"
	"github.com/powder-labs/powder/internal/judge"
	"github.com/powder-labs/powder/internal/model"
)

// DegradedPolicy decides what happens to candidates whose live conditions
// could not be fetched.
type DegradedPolicy string

const (
	// DegradedPenalize keeps degraded candidates with a score penalty.
	DegradedPenalize DegradedPolicy = "penalize"
	// DegradedExclude drops degraded candidates from ranking entirely.
	DegradedExclude DegradedPolicy = "exclude"
)

// judgedTopN bounds how many finalists get a judge pass per query.
const judgedTopN = 5

// Engine runs the full recommendation pipeline: catalog listing, geographic
// and hard filtering, enrichment, day assessment, scoring, and ranking.
type Engine struct {
	store          catalog.Store
	enricher       *enrich.Enricher
	scorer         *Scorer
	judge          judge.Judge
	origin         model.Origin
	degradedPolicy DegradedPolicy
	now            func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithJudge replaces the default disabled judge.
func WithJudge(j judge.Judge) EngineOption {
	return func(e *Engine) {
		if j != nil {
			e.judge = j
		}
	}
}

// WithDefaultOrigin sets the origin used when a query does not carry one.
func WithDefaultOrigin(o model.Origin) EngineOption {
	return func(e *Engine) { e.origin = o }
}

// WithDegradedPolicy sets the handling for candidates lacking live conditions.
func WithDegradedPolicy(p DegradedPolicy) EngineOption {
	return func(e *Engine) {
		if p == DegradedExclude || p == DegradedPenalize {
			e.degradedPolicy = p
		}
	}
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine assembles the pipeline around a catalog store, an enricher, and
// a score configuration.
func NewEngine(store catalog.Store, enricher *enrich.Enricher, cfg ScoreConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          store,
		enricher:       enricher,
		scorer:         NewScorer(cfg),
		judge:          judge.Disabled{},
		degradedPolicy: DegradedPenalize,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend answers one query. Constraint violations return a typed error;
// an empty or postponed result is reported through the result status, never
// as an error.
func (e *Engine) Recommend(ctx context.Context, cs model.ConstraintSet) (*model.RankedResult, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	queryID := uuid.New().String()
	log := zap.L().With(zap.String("query_id", queryID))

	origin := e.origin
	if cs.Origin.Lat != 0 || cs.Origin.Lon != 0 {
		origin = cs.Origin
	}
	targetDate := cs.TargetDate
	if targetDate.IsZero() {
		targetDate = e.now()
	}

	mountains, err := e.store.ListMountains(ctx, catalog.Filter{})
	if err != nil {
		return nil, eris.Wrap(err, "recommend: list mountains")
	}

	cands, excluded := GeoFilter(origin, cs.MaxDriveHours, mountains)
	log.Info("geographic filter applied",
		zap.Int("catalog", len(mountains)),
		zap.Int("in_range", len(cands)),
	)

	cands, hardExcluded := CompileHardFilters(cs).Apply(cands)
	excluded = append(excluded, hardExcluded...)
	log.Info("hard filters applied", zap.Int("eligible", len(cands)))

	if len(cands) == 0 {
		return &model.RankedResult{
			ID:          queryID,
			Status:      model.StatusNoEligible,
			Reason:      "no mountains satisfy the stated constraints",
			GeneratedAt: e.now(),
			Excluded:    excluded,
		}, nil
	}

	cands = e.enricher.Enrich(ctx, origin, targetDate, cands)

	if e.degradedPolicy == DegradedExclude {
		kept := cands[:0]
		for _, c := range cands {
			if c.Degraded {
				excluded = append(excluded, model.Exclusion{
					CandidateID: c.ID,
					Name:        c.Name,
					Reason:      "live conditions unavailable",
				})
				continue
			}
			kept = append(kept, c)
		}
		cands = kept
		if len(cands) == 0 {
			return &model.RankedResult{
				ID:          queryID,
				Status:      model.StatusNoEligible,
				Reason:      "live conditions unavailable for every candidate",
				GeneratedAt: e.now(),
				Excluded:    excluded,
			}, nil
		}
	}

	day := AssessDay(cands, cs)
	log.Info("day assessed",
		zap.String("quality", string(day.Quality)),
		zap.String("mode", string(day.Mode)),
	)

	scored := make([]model.ScoredCandidate, len(cands))
	for i, c := range cands {
		scored[i] = e.scorer.Score(c, cs, day)
	}

	e.applyJudge(ctx, scored, cs, day)

	crowd := e.crowdContext(targetDate, scored)
	result := Rank(queryID, scored, cs, day, crowd, excluded)
	result.GeneratedAt = e.now()

	log.Info("recommendation ready",
		zap.String("status", string(result.Status)),
		zap.Int("ranked", len(result.Candidates)),
		zap.Int("excluded", len(result.Excluded)),
	)
	return result, nil
}

// applyJudge runs the judge over the deterministic top finalists and folds
// the bounded delta into their scores.
func (e *Engine) applyJudge(ctx context.Context, scored []model.ScoredCandidate, cs model.ConstraintSet, day model.DayContext) {
	if _, disabled := e.judge.(judge.Disabled); disabled {
		return
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	// Partial selection of the finalists by deterministic score.
	for i := 0; i < len(order) && i < judgedTopN; i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if scored[order[j]].Score > scored[order[best]].Score {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}

	for i := 0; i < len(order) && i < judgedTopN; i++ {
		sc := &scored[order[i]]
		jd := e.judge.Assess(ctx, *sc, cs, day)
		if jd.Delta == 0 {
			continue
		}
		sc.Breakdown.JudgeDelta = jd.Delta
		sc.Score = clamp(sc.Score+jd.Delta, 0, 100)
		if jd.Rationale != "" {
			sc.TradeoffNote = jd.Rationale
		}
	}
}

// crowdContext reports crowd pressure for the state of the leading candidate.
func (e *Engine) crowdContext(date time.Time, scored []model.ScoredCandidate) *model.CrowdContext {
	if len(scored) == 0 {
		return nil
	}
	lead := scored[0]
	for _, sc := range scored[1:] {
		if sc.Score > lead.Score {
			lead = sc
		}
	}
	ctx := crowds.Assess(date, lead.State)
	return &ctx
}
