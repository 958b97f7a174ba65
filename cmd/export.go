package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/pkg/notion"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recommendations to external services",
}

var exportNotionFlags struct {
	date   string
	result string
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Upsert a day's recommendation into the Notion trip log",
	Long: `Writes one trip-log entry per date. With --result the entry comes from
a saved JSON result file, otherwise the full pipeline runs for the date.
An existing entry for the same date is updated in place.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Notion.Token == "" {
			return eris.New("notion token is required (POWDER_NOTION_TOKEN)")
		}
		if cfg.Notion.TripLogDB == "" {
			return eris.New("notion trip log DB ID is required (POWDER_NOTION_TRIP_LOG_DB)")
		}

		date := time.Now()
		if exportNotionFlags.date != "" {
			var err error
			date, err = time.Parse("2006-01-02", exportNotionFlags.date)
			if err != nil {
				return eris.Wrapf(err, "parse --date %q", exportNotionFlags.date)
			}
		}

		var res *model.RankedResult
		if exportNotionFlags.result != "" {
			data, err := os.ReadFile(exportNotionFlags.result)
			if err != nil {
				return eris.Wrap(err, "read result file")
			}
			res = &model.RankedResult{}
			if err := json.Unmarshal(data, res); err != nil {
				return eris.Wrap(err, "parse result file")
			}
		} else {
			e, err := initEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err = e.Engine.Recommend(ctx, model.ConstraintSet{TargetDate: date})
			if err != nil {
				return eris.Wrap(err, "recommend")
			}
		}

		tripLog := notion.NewTripLog(notion.NewClient(cfg.Notion.Token), cfg.Notion.TripLogDB)
		pageID, err := tripLog.Export(ctx, date, res)
		if err != nil {
			return eris.Wrap(err, "export trip log")
		}

		zap.L().Info("trip log exported",
			zap.String("date", date.Format("2006-01-02")),
			zap.String("page_id", pageID),
			zap.String("status", string(res.Status)),
		)
		return nil
	},
}

func init() {
	f := exportNotionCmd.Flags()
	f.StringVar(&exportNotionFlags.date, "date", "", "trip date YYYY-MM-DD (default today)")
	f.StringVar(&exportNotionFlags.result, "result", "", "saved JSON result file (default: run the pipeline)")

	exportCmd.AddCommand(exportNotionCmd)
	rootCmd.AddCommand(exportCmd)
}
