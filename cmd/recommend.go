package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/model"
)

var recommendFlags struct {
	date          string
	originName    string
	originLat     float64
	originLon     float64
	maxDriveHours float64
	pass          string
	parks         bool
	glades        bool
	night         bool
	beginner      bool
	expert        bool
	snowboarding  bool
	skill         string
	activity      string
	vibe          string
	out           string
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank mountains for a day and print the result as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		cs, err := constraintsFromFlags(cmd)
		if err != nil {
			return err
		}

		res, err := e.Engine.Recommend(ctx, cs)
		if err != nil {
			return eris.Wrap(err, "recommend")
		}

		zap.L().Info("recommendation complete",
			zap.String("query_id", res.ID),
			zap.String("status", string(res.Status)),
			zap.Int("candidates", len(res.Candidates)),
		)

		return writeJSON(res, recommendFlags.out)
	},
}

// constraintsFromFlags builds a ConstraintSet, leaving hard filters nil
// unless their flag was explicitly set on the command line.
func constraintsFromFlags(cmd *cobra.Command) (model.ConstraintSet, error) {
	var cs model.ConstraintSet

	if recommendFlags.date != "" {
		d, err := time.Parse("2006-01-02", recommendFlags.date)
		if err != nil {
			return cs, eris.Wrapf(err, "parse --date %q", recommendFlags.date)
		}
		cs.TargetDate = d
	}

	if cmd.Flags().Changed("origin-lat") || cmd.Flags().Changed("origin-lon") {
		cs.Origin = model.Origin{
			Name:   recommendFlags.originName,
			LatLon: model.LatLon{Lat: recommendFlags.originLat, Lon: recommendFlags.originLon},
		}
	}

	if cmd.Flags().Changed("max-drive-hours") {
		cs.MaxDriveHours = model.Float64Ptr(recommendFlags.maxDriveHours)
	}
	if cmd.Flags().Changed("pass") {
		cs.PassType = model.StringPtr(recommendFlags.pass)
	}
	if cmd.Flags().Changed("needs-terrain-parks") {
		cs.NeedsTerrainParks = model.BoolPtr(recommendFlags.parks)
	}
	if cmd.Flags().Changed("needs-glades") {
		cs.NeedsGlades = model.BoolPtr(recommendFlags.glades)
	}
	if cmd.Flags().Changed("needs-night-skiing") {
		cs.NeedsNightSkiing = model.BoolPtr(recommendFlags.night)
	}
	if cmd.Flags().Changed("needs-beginner-terrain") {
		cs.NeedsBeginner = model.BoolPtr(recommendFlags.beginner)
	}
	if cmd.Flags().Changed("needs-expert-terrain") {
		cs.NeedsExpert = model.BoolPtr(recommendFlags.expert)
	}
	if cmd.Flags().Changed("allows-snowboarding") {
		cs.AllowsSnowboarding = model.BoolPtr(recommendFlags.snowboarding)
	}

	cs.SkillLevel = recommendFlags.skill
	cs.Activity = recommendFlags.activity
	cs.Vibe = recommendFlags.vibe

	return cs, nil
}

func writeJSON(v any, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode result")
	}
	return nil
}

func init() {
	f := recommendCmd.Flags()
	f.StringVar(&recommendFlags.date, "date", "", "target date YYYY-MM-DD (default today)")
	f.StringVar(&recommendFlags.originName, "origin-name", "", "label for the origin point")
	f.Float64Var(&recommendFlags.originLat, "origin-lat", 0, "origin latitude (default from config)")
	f.Float64Var(&recommendFlags.originLon, "origin-lon", 0, "origin longitude (default from config)")
	f.Float64Var(&recommendFlags.maxDriveHours, "max-drive-hours", 0, "hard limit on one-way drive time")
	f.StringVar(&recommendFlags.pass, "pass", "", "required pass affiliation (epic, ikon, indy, ...)")
	f.BoolVar(&recommendFlags.parks, "needs-terrain-parks", false, "require terrain parks")
	f.BoolVar(&recommendFlags.glades, "needs-glades", false, "require glade skiing")
	f.BoolVar(&recommendFlags.night, "needs-night-skiing", false, "require night skiing")
	f.BoolVar(&recommendFlags.beginner, "needs-beginner-terrain", false, "require meaningful beginner terrain")
	f.BoolVar(&recommendFlags.expert, "needs-expert-terrain", false, "require double-black terrain")
	f.BoolVar(&recommendFlags.snowboarding, "allows-snowboarding", false, "require snowboarding to be allowed")
	f.StringVar(&recommendFlags.skill, "skill", "", "skill level: beginner, intermediate, advanced, expert")
	f.StringVar(&recommendFlags.activity, "activity", "", "activity: ski, snowboard, either")
	f.StringVar(&recommendFlags.vibe, "vibe", "", "vibe: powder_chase, casual, park_day, learning, family_day")
	f.StringVar(&recommendFlags.out, "out", "", "write JSON result to file instead of stdout")
	rootCmd.AddCommand(recommendCmd)
}
