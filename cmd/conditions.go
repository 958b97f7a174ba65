package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/recommend"
	"github.com/powder-labs/powder/pkg/meteo"
)

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

var conditionsFlags struct {
	date       string
	radius     float64
	originLat  float64
	originLon  float64
	originName string
}

var conditionsCmd = &cobra.Command{
	Use:   "conditions",
	Short: "Print forecast conditions for mountains within driving range",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		date := time.Now()
		if conditionsFlags.date != "" {
			date, err = time.Parse("2006-01-02", conditionsFlags.date)
			if err != nil {
				return eris.Wrapf(err, "parse --date %q", conditionsFlags.date)
			}
		}

		origin := model.Origin{
			Name:   cfg.Origin.Name,
			LatLon: model.LatLon{Lat: cfg.Origin.Lat, Lon: cfg.Origin.Lon},
		}
		if cmd.Flags().Changed("origin-lat") || cmd.Flags().Changed("origin-lon") {
			origin = model.Origin{
				Name:   conditionsFlags.originName,
				LatLon: model.LatLon{Lat: conditionsFlags.originLat, Lon: conditionsFlags.originLon},
			}
		}

		mountains, err := store.ListMountains(ctx, catalog.Filter{})
		if err != nil {
			return eris.Wrap(err, "list mountains")
		}

		cands, _ := recommend.GeoFilter(origin, model.Float64Ptr(conditionsFlags.radius), mountains)
		sort.Slice(cands, func(i, j int) bool { return cands[i].DistanceKM < cands[j].DistanceKM })

		weather := meteo.NewClient(
			meteo.WithBaseURL(cfg.Meteo.BaseURL),
			meteo.WithTimezone(cfg.Meteo.Timezone),
			meteo.WithRateLimit(cfg.Meteo.RateLimit),
		)

		w := newTabWriter()
		fmt.Fprintln(w, "MOUNTAIN\tSTATE\tDIST KM\tFRESH CM\tBASE CM\tTEMP C\tWIND KPH\tWEATHER")
		for _, c := range cands {
			fc, err := weather.Forecast(ctx, c.Lat, c.Lon, date)
			if err != nil {
				zap.L().Warn("forecast unavailable",
					zap.String("mountain", c.Name),
					zap.Error(err),
				)
				fmt.Fprintf(w, "%s\t%s\t%.0f\t-\t-\t-\t-\tunavailable\n", c.Name, c.State, c.DistanceKM)
				continue
			}
			cond := model.Conditions{
				FreshSnow24hCM: fc.SnowfallSumCM,
				SnowDepthCM:    fc.SnowDepthCM,
				TempC:          fc.TempC,
				WindKPH:        fc.WindKPH,
				VisibilityM:    fc.VisibilityM,
				WeatherCode:    fc.WeatherCode,
			}
			fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%s\n",
				c.Name, c.State, c.DistanceKM,
				cond.FreshSnow24hCM, cond.SnowDepthCM, cond.TempC, cond.WindKPH,
				cond.WeatherDescription(),
			)
		}
		return w.Flush()
	},
}

func init() {
	f := conditionsCmd.Flags()
	f.StringVar(&conditionsFlags.date, "date", "", "target date YYYY-MM-DD (default today)")
	f.Float64Var(&conditionsFlags.radius, "radius-hours", 4, "driving radius in hours")
	f.StringVar(&conditionsFlags.originName, "origin-name", "", "label for the origin point")
	f.Float64Var(&conditionsFlags.originLat, "origin-lat", 0, "origin latitude (default from config)")
	f.Float64Var(&conditionsFlags.originLon, "origin-lon", 0, "origin longitude (default from config)")
	rootCmd.AddCommand(conditionsCmd)
}
