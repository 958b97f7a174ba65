package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/eval"
	"github.com/powder-labs/powder/internal/fetcher"
	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/recommend"
	"github.com/powder-labs/powder/pkg/anthropic"
)

var evalFlags struct {
	examples  string
	narrative bool
	topK      int
	out       string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the recommendation quality harness against an example set",
	Long: `Replays recorded condition snapshots through the full pipeline and
grades the picks against expected outcomes. With --narrative the top pick
is extracted from generated prose instead of the structured result.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		examples, err := eval.LoadExamples(evalFlags.examples)
		if err != nil {
			return err
		}

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		scoreCfg := recommend.DefaultScoreConfig()
		if cfg.Scoring.ProfilePath != "" {
			scoreCfg, err = recommend.LoadScoreConfig(cfg.Scoring.ProfilePath)
			if err != nil {
				return eris.Wrap(err, "load score profile")
			}
		}

		opts := []eval.HarnessOption{
			eval.WithScoreConfig(scoreCfg),
			eval.WithExclusionTopK(evalFlags.topK),
		}
		if evalFlags.narrative {
			if cfg.Anthropic.Key == "" {
				return eris.New("narrative grading needs an anthropic key (POWDER_ANTHROPIC_KEY)")
			}
			client := anthropic.NewClient(cfg.Anthropic.Key)
			opts = append(opts, eval.WithNarrative(narrativeProducer(client, cfg.Anthropic.Model)))
		}

		report, err := eval.NewHarness(store, opts...).Run(ctx, examples)
		if err != nil {
			return eris.Wrap(err, "run eval harness")
		}

		fmt.Println(report.String())
		for _, r := range report.Results {
			zap.L().Info("example graded",
				zap.String("example", r.ExampleID),
				zap.String("top_pick", r.TopPick),
				zap.String("hit_at_1", r.Hit1.String()),
				zap.String("constraints", r.Constraints.String()),
			)
		}

		if evalFlags.out != "" {
			if err := writeJSON(report, evalFlags.out); err != nil {
				return err
			}
		}
		return nil
	},
}

// narrativeProducer asks the model to write a trip summary for the ranked
// result. The harness then grades whatever resort names the prose mentions.
func narrativeProducer(client anthropic.Client, modelID string) eval.NarrativeProducer {
	return func(ctx context.Context, ex eval.Example, res *model.RankedResult) (string, error) {
		var b strings.Builder
		fmt.Fprintf(&b, "Query: %s\n", ex.Query)
		if res.Day != nil {
			fmt.Fprintf(&b, "Day: %s. %s\n", res.Day.Quality, res.Day.Rationale)
		}
		for i, c := range res.Candidates {
			fmt.Fprintf(&b, "%d. %s (%s), score %.1f, pros: %s, cons: %s\n",
				i+1, c.Name, c.State, c.Score,
				strings.Join(c.Pros, "; "), strings.Join(c.Cons, "; "))
		}

		resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     modelID,
			MaxTokens: 512,
			System: "You are a ski concierge. Write a short paragraph recommending " +
				"where to ski, naming the resorts you mention exactly as given.",
			Messages: []anthropic.Message{{Role: "user", Content: b.String()}},
		})
		if err != nil {
			return "", eris.Wrap(err, "generate narrative")
		}
		resp.Usage.LogCost(modelID, "narrative")
		return resp.Text, nil
	}
}

var historicFlags struct {
	start string
	end   string
	dest  string
}

var evalHistoricCmd = &cobra.Command{
	Use:   "fetch-historic",
	Short: "Backfill daily condition fixtures from the weather archive",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		start, err := time.Parse("2006-01-02", historicFlags.start)
		if err != nil {
			return eris.Wrapf(err, "parse --start %q", historicFlags.start)
		}
		end, err := time.Parse("2006-01-02", historicFlags.end)
		if err != nil {
			return eris.Wrapf(err, "parse --end %q", historicFlags.end)
		}

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		mountains, err := store.ListMountains(ctx, catalog.Filter{})
		if err != nil {
			return eris.Wrap(err, "list mountains")
		}

		hf := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		n, err := eval.NewHistoricFetcher(hf).FetchSeason(ctx, mountains, start, end, historicFlags.dest)
		if err != nil {
			return eris.Wrap(err, "fetch historic conditions")
		}

		zap.L().Info("historic backfill complete",
			zap.Int("fixtures", n),
			zap.String("dest", historicFlags.dest),
		)
		return nil
	},
}

func init() {
	f := evalCmd.Flags()
	f.StringVar(&evalFlags.examples, "examples", "", "path to examples YAML (required)")
	f.BoolVar(&evalFlags.narrative, "narrative", false, "grade generated prose instead of the structured result")
	f.IntVar(&evalFlags.topK, "top-k", 1, "how many top candidates the exclusion check inspects")
	f.StringVar(&evalFlags.out, "out", "", "write the JSON report to a file")
	_ = evalCmd.MarkFlagRequired("examples")

	hf := evalHistoricCmd.Flags()
	hf.StringVar(&historicFlags.start, "start", "", "first day YYYY-MM-DD (required)")
	hf.StringVar(&historicFlags.end, "end", "", "last day YYYY-MM-DD (required)")
	hf.StringVar(&historicFlags.dest, "dest", "fixtures", "output directory for fixture files")
	_ = evalHistoricCmd.MarkFlagRequired("start")
	_ = evalHistoricCmd.MarkFlagRequired("end")

	evalCmd.AddCommand(evalHistoricCmd)
	rootCmd.AddCommand(evalCmd)
}
