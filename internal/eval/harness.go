package eval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/enrich"
	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/recommend"
	"github.com/powder-labs/powder/internal/resilience"
)

// NarrativeProducer renders a ranked result as free text. Plugging one in
// switches the harness to narrative grading: picks are extracted back out of
// the text instead of read from the structured result.
type NarrativeProducer func(ctx context.Context, ex Example, res *model.RankedResult) (string, error)

// Harness replays examples through the recommendation pipeline and grades
// the output. The pipeline under test is the real one; only the conditions
// source and router are replaced with replayable stand-ins.
type Harness struct {
	store       catalog.Store
	cfg         recommend.ScoreConfig
	topK        int
	narrative   NarrativeProducer
	concurrency int
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithScoreConfig overrides the weight profile under evaluation.
func WithScoreConfig(cfg recommend.ScoreConfig) HarnessOption {
	return func(h *Harness) { h.cfg = cfg }
}

// WithExclusionTopK widens the exclusion check beyond the top pick.
func WithExclusionTopK(k int) HarnessOption {
	return func(h *Harness) {
		if k > 0 {
			h.topK = k
		}
	}
}

// WithNarrative switches the harness to narrative grading.
func WithNarrative(p NarrativeProducer) HarnessOption {
	return func(h *Harness) { h.narrative = p }
}

// WithConcurrency bounds parallel example evaluation.
func WithConcurrency(n int) HarnessOption {
	return func(h *Harness) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// NewHarness builds a harness over a catalog store.
func NewHarness(store catalog.Store, opts ...HarnessOption) *Harness {
	h := &Harness{
		store:       store,
		cfg:         recommend.DefaultScoreConfig(),
		topK:        1,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Result is the graded outcome of one example.
type Result struct {
	ExampleID string             `json:"example_id"`
	Status    model.ResultStatus `json:"status"`
	TopPick   string             `json:"top_pick,omitempty"`
	Top3      []string           `json:"top_3,omitempty"`

	Hit1            Metric `json:"hit_at_1"`
	Hit3            Metric `json:"hit_at_3"`
	Constraints     Metric `json:"constraint_satisfaction"`
	Exclusion       Metric `json:"exclusion_check"`
	KeywordCoverage Metric `json:"keyword_coverage"`
}

// Report aggregates results across an example set. Aggregates are built from
// associative sums, so the numbers do not depend on evaluation order.
type Report struct {
	Examples int      `json:"examples"`
	Results  []Result `json:"results"`

	Hit1            Aggregate `json:"hit_at_1"`
	Hit3            Aggregate `json:"hit_at_3"`
	Constraints     Aggregate `json:"constraint_satisfaction"`
	Exclusion       Aggregate `json:"exclusion_check"`
	KeywordCoverage Aggregate `json:"keyword_coverage"`
}

func (r *Report) String() string {
	return fmt.Sprintf("Hit@1: %s | Hit@3: %s | Constraints: %s | Exclusions: %s | Keywords: %s",
		r.Hit1, r.Hit3, r.Constraints, r.Exclusion, r.KeywordCoverage)
}

// Run evaluates every example and aggregates the metrics.
func (h *Harness) Run(ctx context.Context, examples []Example) (*Report, error) {
	mountains, err := h.store.ListMountains(ctx, catalog.Filter{})
	if err != nil {
		return nil, eris.Wrap(err, "eval: list mountains")
	}

	results := make([]Result, len(examples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i := range examples {
		g.Go(func() error {
			r, err := h.runExample(gctx, mountains, examples[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Examples: len(examples), Results: results}
	for _, r := range results {
		report.Hit1.Add(r.Hit1)
		report.Hit3.Add(r.Hit3)
		report.Constraints.Add(r.Constraints)
		report.Exclusion.Add(r.Exclusion)
		report.KeywordCoverage.Add(r.KeywordCoverage)
	}
	return report, nil
}

func (h *Harness) runExample(ctx context.Context, mountains []model.Mountain, ex Example) (Result, error) {
	date, err := ex.TargetDate()
	if err != nil {
		return Result{}, err
	}

	// Snapshot conditions, straight-line drive times, a pinned clock, and
	// no judge: the only free variables left are catalog and weights.
	enricher := enrich.New(
		NewSnapshotProvider(mountains, ex.Conditions),
		nil,
		enrich.WithRetry(resilience.RetryConfig{MaxAttempts: 1}),
	)
	engine := recommend.NewEngine(h.store, enricher, h.cfg,
		recommend.WithDefaultOrigin(ex.Origin),
		recommend.WithClock(func() time.Time { return date }),
	)

	cs := ex.Constraints
	cs.TargetDate = date
	cs.Origin = ex.Origin

	res, err := engine.Recommend(ctx, cs)
	if err != nil {
		return Result{}, eris.Wrapf(err, "eval: example %s", ex.ID)
	}

	r := Result{ExampleID: ex.ID, Status: res.Status}
	if h.narrative != nil {
		h.gradeNarrative(ctx, &r, ex, res, mountains)
	} else {
		h.gradeStructured(&r, ex, res)
	}

	zap.L().Debug("example evaluated",
		zap.String("example", ex.ID),
		zap.String("top_pick", r.TopPick),
		zap.String("hit_at_1", r.Hit1.String()),
	)
	return r, nil
}

// gradeStructured reads picks straight out of the ranked result.
func (h *Harness) gradeStructured(r *Result, ex Example, res *model.RankedResult) {
	if !res.HasPick() {
		// The ground truth expects a pick; a sentinel result misses it.
		r.Hit1 = Measured(0)
		r.Hit3 = Measured(0)
		r.Constraints = constraintsOnNoPick(ex)
		r.Exclusion = exclusionMetric(ex, nil)
		r.KeywordCoverage = keywordMetric(ex, res.Reason)
		return
	}

	top := res.Top1()
	r.TopPick = top.Name
	for _, c := range res.TopN(3) {
		r.Top3 = append(r.Top3, c.Name)
	}

	r.Hit1 = MeasuredBool(containsName(ex.ExpectedTopPick, top.Name))
	r.Hit3 = hitAt3(ex, r.Top3)
	r.Constraints = constraintMetric(ex, top.Mountain, top.DriveMinutesOrEstimate())

	var topKNames []string
	for _, c := range res.TopN(h.topK) {
		topKNames = append(topKNames, c.Name)
	}
	r.Exclusion = exclusionMetric(ex, topKNames)
	r.KeywordCoverage = keywordMetric(ex, renderSummary(res))
}

// gradeNarrative extracts picks back out of produced text. Anything the text
// does not let us check is reported not-measurable, never as a zero.
func (h *Harness) gradeNarrative(ctx context.Context, r *Result, ex Example, res *model.RankedResult, mountains []model.Mountain) {
	text, err := h.narrative(ctx, ex, res)
	if err != nil {
		zap.L().Warn("narrative producer failed",
			zap.String("example", ex.ID),
			zap.Error(err),
		)
		r.Hit1 = NotMeasurable()
		r.Hit3 = NotMeasurable()
		r.Constraints = NotMeasurable()
		r.Exclusion = NotMeasurable()
		r.KeywordCoverage = NotMeasurable()
		return
	}

	r.KeywordCoverage = keywordMetric(ex, text)

	names := ExtractResorts(text, mountains)
	if len(names) == 0 {
		r.Hit1 = NotMeasurable()
		r.Hit3 = NotMeasurable()
		r.Constraints = NotMeasurable()
		r.Exclusion = NotMeasurable()
		return
	}

	r.TopPick = names[0]
	r.Top3 = names
	if len(r.Top3) > 3 {
		r.Top3 = r.Top3[:3]
	}

	r.Hit1 = MeasuredBool(containsName(ex.ExpectedTopPick, r.TopPick))
	r.Hit3 = hitAt3(ex, r.Top3)

	topK := names
	if len(topK) > h.topK {
		topK = topK[:h.topK]
	}
	r.Exclusion = exclusionMetric(ex, topK)

	// Attribute constraints check against the catalog row; the drive-time
	// constraint needs the ranked candidate behind the extracted name.
	if sc := findCandidate(res, r.TopPick); sc != nil {
		r.Constraints = constraintMetric(ex, sc.Mountain, sc.DriveMinutesOrEstimate())
	} else if m := findMountain(mountains, r.TopPick); m != nil && ex.Constraints.MaxDriveHours == nil {
		r.Constraints = constraintMetric(ex, *m, 0)
	} else {
		r.Constraints = NotMeasurable()
	}
}

// hitAt3 checks whether any acceptable top-3 name actually ranked top-3.
func hitAt3(ex Example, top3 []string) Metric {
	for _, name := range top3 {
		if containsName(ex.ExpectedInTop3, name) {
			return Measured(1)
		}
	}
	return Measured(0)
}

// constraintMetric measures the fraction of declared hard constraints the
// top pick satisfies. N/A when the example declared none.
func constraintMetric(ex Example, m model.Mountain, driveMinutes float64) Metric {
	preds := recommend.CompileHardFilters(ex.Constraints)
	declared := len(preds)
	satisfied := 0
	for _, p := range preds {
		if p.Fn(m) {
			satisfied++
		}
	}
	if ex.Constraints.MaxDriveHours != nil {
		declared++
		if driveMinutes <= *ex.Constraints.MaxDriveHours*60 {
			satisfied++
		}
	}
	if declared == 0 {
		return NotApplicable()
	}
	return Measured(float64(satisfied) / float64(declared))
}

// constraintsOnNoPick grades a sentinel result: with constraints declared
// but nothing recommended there is nothing to violate, so N/A either way.
func constraintsOnNoPick(Example) Metric { return NotApplicable() }

// exclusionMetric passes when no forbidden mountain appears in the top k.
func exclusionMetric(ex Example, topK []string) Metric {
	if len(ex.ExpectedExcluded) == 0 {
		return NotApplicable()
	}
	for _, name := range topK {
		if containsName(ex.ExpectedExcluded, name) {
			return Measured(0)
		}
	}
	return Measured(1)
}

// keywordMetric measures the fraction of expected keywords present in text.
func keywordMetric(ex Example, text string) Metric {
	if len(ex.ReasoningKeywords) == 0 {
		return NotApplicable()
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range ex.ReasoningKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	return Measured(float64(hits) / float64(len(ex.ReasoningKeywords)))
}

func findCandidate(res *model.RankedResult, name string) *model.ScoredCandidate {
	folded := foldName(name)
	for i := range res.Candidates {
		if foldName(res.Candidates[i].Name) == folded {
			return &res.Candidates[i]
		}
	}
	return nil
}

func findMountain(mountains []model.Mountain, name string) *model.Mountain {
	folded := foldName(name)
	for i := range mountains {
		if foldName(mountains[i].Name) == folded {
			return &mountains[i]
		}
	}
	return nil
}

// renderSummary flattens a ranked result into prose for keyword grading in
// structured mode. It is derived text only; the result stays authoritative.
func renderSummary(res *model.RankedResult) string {
	var b strings.Builder
	if res.Day != nil {
		b.WriteString(res.Day.Rationale)
		b.WriteByte('\n')
	}
	for _, c := range res.Candidates {
		b.WriteString(c.Name)
		b.WriteByte('\n')
		for _, p := range c.Pros {
			b.WriteString(p)
			b.WriteByte('\n')
		}
		for _, con := range c.Cons {
			b.WriteString(con)
			b.WriteByte('\n')
		}
		if c.TradeoffNote != "" {
			b.WriteString(c.TradeoffNote)
			b.WriteByte('\n')
		}
	}
	if res.Crowd != nil {
		b.WriteString(res.Crowd.Note)
	}
	return b.String()
}
