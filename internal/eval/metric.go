package eval

import "fmt"

// MetricState distinguishes a measured value from the two ways a metric can
// legitimately carry no number. NotApplicable means the example declared
// nothing to check; NotMeasurable means the output could not be checked at
// all (e.g. no resort name found in a narrative). Neither state may enter an
// aggregate denominator, because mapping them to zero would punish examples
// for what they did not claim.
type MetricState string

const (
	StateMeasured      MetricState = "measured"
	StateNotApplicable MetricState = "not_applicable"
	StateNotMeasurable MetricState = "not_measurable"
)

// Metric is a single per-example measurement in [0,1], or one of the two
// valueless states.
type Metric struct {
	Value float64     `json:"value"`
	State MetricState `json:"state"`
}

// Measured wraps a measured value.
func Measured(v float64) Metric { return Metric{Value: v, State: StateMeasured} }

// MeasuredBool maps a pass/fail check to 1 or 0.
func MeasuredBool(ok bool) Metric {
	if ok {
		return Measured(1)
	}
	return Measured(0)
}

// NotApplicable marks a metric the example declared nothing for.
func NotApplicable() Metric { return Metric{State: StateNotApplicable} }

// NotMeasurable marks a metric the output could not be checked against.
func NotMeasurable() Metric { return Metric{State: StateNotMeasurable} }

func (m Metric) String() string {
	switch m.State {
	case StateMeasured:
		return fmt.Sprintf("%.1f%%", m.Value*100)
	case StateNotApplicable:
		return "n/a"
	default:
		return "not measurable"
	}
}

// Aggregate folds per-example metrics into a running mean. It keeps a plain
// sum and an applicable count, so merging partial aggregates is associative
// and the result is independent of evaluation order.
type Aggregate struct {
	Sum        float64 `json:"sum"`
	Applicable int     `json:"applicable"`
	Skipped    int     `json:"skipped"` // not-applicable plus not-measurable
}

// Add folds one metric in. Valueless states bump only the skip count and
// never change the mean.
func (a *Aggregate) Add(m Metric) {
	if m.State != StateMeasured {
		a.Skipped++
		return
	}
	a.Sum += m.Value
	a.Applicable++
}

// Merge combines two partial aggregates.
func (a *Aggregate) Merge(b Aggregate) {
	a.Sum += b.Sum
	a.Applicable += b.Applicable
	a.Skipped += b.Skipped
}

// Mean returns the arithmetic mean over applicable examples. ok is false
// when no example was applicable.
func (a Aggregate) Mean() (mean float64, ok bool) {
	if a.Applicable == 0 {
		return 0, false
	}
	return a.Sum / float64(a.Applicable), true
}

func (a Aggregate) String() string {
	mean, ok := a.Mean()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%% (%d examples)", mean*100, a.Applicable)
}
