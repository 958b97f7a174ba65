// Package judge applies an optional model-graded adjustment on top of the
// deterministic score. The judge can nudge a candidate up or down within a
// bounded band but can never fail a recommendation query: any error from the
// model collapses to a zero adjustment.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/pkg/anthropic"
)

// Judgment is the bounded score adjustment for a single candidate.
type Judgment struct {
	Delta     float64 `json:"delta"`
	Rationale string  `json:"rationale"`
}

// Judge scores the qualitative fit of a candidate against the skier's stated
// preferences. Implementations must be safe for concurrent use.
type Judge interface {
	Assess(ctx context.Context, c model.ScoredCandidate, cs model.ConstraintSet, day model.DayContext) Judgment
}

// Disabled is the default judge. It never adjusts anything.
type Disabled struct{}

func (Disabled) Assess(context.Context, model.ScoredCandidate, model.ConstraintSet, model.DayContext) Judgment {
	return Judgment{}
}

// Claude is a Judge backed by the Anthropic API.
type Claude struct {
	client   anthropic.Client
	model    string
	maxDelta float64
}

// NewClaude builds a model-backed judge. maxDelta bounds the adjustment band
// in both directions; values at or below zero disable adjustments entirely.
func NewClaude(client anthropic.Client, modelID string, maxDelta float64) *Claude {
	return &Claude{client: client, model: modelID, maxDelta: maxDelta}
}

const systemPrompt = `You are a ski-trip concierge reviewing one already-scored resort candidate.
Given the skier's preferences, today's conditions, and the deterministic score breakdown,
reply with a JSON object {"delta": <float>, "rationale": "<one sentence>"} where delta is a
small adjustment reflecting qualitative fit the numeric score missed (vibe, terrain character,
crowd feel). Reply with JSON only.`

func (j *Claude) Assess(ctx context.Context, c model.ScoredCandidate, cs model.ConstraintSet, day model.DayContext) Judgment {
	if j.maxDelta <= 0 {
		return Judgment{}
	}

	resp, err := j.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     j.model,
		MaxTokens: 300,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(c, cs, day)},
		},
	})
	if err != nil {
		zap.L().Warn("judge call failed, keeping deterministic score",
			zap.String("mountain", c.Name),
			zap.Error(err),
		)
		return Judgment{}
	}
	resp.Usage.LogCost(j.model, "judge")

	jd, err := parseJudgment(resp.Text)
	if err != nil {
		zap.L().Warn("judge returned unparseable output",
			zap.String("mountain", c.Name),
			zap.Error(err),
		)
		return Judgment{}
	}

	if jd.Delta > j.maxDelta {
		jd.Delta = j.maxDelta
	}
	if jd.Delta < -j.maxDelta {
		jd.Delta = -j.maxDelta
	}
	return jd
}

func buildPrompt(c model.ScoredCandidate, cs model.ConstraintSet, day model.DayContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s (%s), score %.1f\n", c.Name, c.State, c.Score)
	fmt.Fprintf(&b, "Breakdown: snow %.1f, comfort %.1f, terrain %.1f, value %.1f, drive -%.1f, boosts %.1f\n",
		c.Breakdown.FreshSnow, c.Breakdown.Comfort, c.Breakdown.TerrainFit,
		c.Breakdown.Value, c.Breakdown.DrivePenalty, c.Breakdown.Boosts)
	if c.Conditions != nil {
		fmt.Fprintf(&b, "Conditions: %.0fcm fresh, %.0fcm base, %.0fC, wind %.0fkph, %s\n",
			c.Conditions.FreshSnow24hCM, c.Conditions.SnowDepthCM,
			c.Conditions.TempC, c.Conditions.WindKPH, c.Conditions.WeatherDescription())
	}
	fmt.Fprintf(&b, "Day: %s, plan %s\n", day.Quality, day.Mode)
	if cs.SkillLevel != "" {
		fmt.Fprintf(&b, "Skill: %s\n", cs.SkillLevel)
	}
	if cs.Vibe != "" {
		fmt.Fprintf(&b, "Vibe wanted: %s\n", cs.Vibe)
	}
	if cs.Activity != "" {
		fmt.Fprintf(&b, "Activity: %s\n", cs.Activity)
	}
	return b.String()
}

// parseJudgment tolerates fenced or prefixed output around the JSON object.
func parseJudgment(text string) (Judgment, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Judgment{}, fmt.Errorf("no JSON object in judge output")
	}

	var jd Judgment
	if err := json.Unmarshal([]byte(text[start:end+1]), &jd); err != nil {
		return Judgment{}, err
	}
	return jd, nil
}
