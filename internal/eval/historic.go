package eval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/powder-labs/powder/internal/fetcher"
	"github.com/powder-labs/powder/internal/model"
)

// defaultArchiveURL is the Open-Meteo historical weather endpoint.
const defaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

const archiveHourlyVars = "temperature_2m,snowfall,snow_depth,wind_speed_10m,visibility,weather_code"

// HistoricFetcher backfills real past-season conditions into per-date
// fixture files. Fixtures use the same per-mountain snapshot schema as
// example files, so an interesting day can be lifted straight into an
// example's conditions block.
type HistoricFetcher struct {
	fetcher  fetcher.Fetcher
	baseURL  string
	timezone string
}

// HistoricOption configures the HistoricFetcher.
type HistoricOption func(*HistoricFetcher)

// WithArchiveURL overrides the archive endpoint (for tests).
func WithArchiveURL(u string) HistoricOption {
	return func(h *HistoricFetcher) { h.baseURL = u }
}

// NewHistoricFetcher wraps a download client for archive pulls.
func NewHistoricFetcher(f fetcher.Fetcher, opts ...HistoricOption) *HistoricFetcher {
	h := &HistoricFetcher{
		fetcher:  f,
		baseURL:  defaultArchiveURL,
		timezone: "America/New_York",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type archiveHourly struct {
	Time          []string  `json:"time"`
	Temperature2M []float64 `json:"temperature_2m"`
	Snowfall      []float64 `json:"snowfall"`
	SnowDepth     []float64 `json:"snow_depth"`
	WindSpeed10M  []float64 `json:"wind_speed_10m"`
	Visibility    []float64 `json:"visibility"`
	WeatherCode   []int     `json:"weather_code"`
}

type archiveResponse struct {
	Hourly archiveHourly `json:"hourly"`
}

// FetchSeason pulls conditions for every mountain over [start, end] and
// writes one YAML fixture per date into destDir. Returns the number of
// fixture files written.
func (h *HistoricFetcher) FetchSeason(ctx context.Context, mountains []model.Mountain, start, end time.Time, destDir string) (int, error) {
	if end.Before(start) {
		return 0, eris.New("eval: season end before start")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, eris.Wrap(err, "eval: create fixtures dir")
	}

	// date string -> mountain name -> conditions
	byDate := make(map[string]map[string]SnapshotConditions)

	for _, m := range mountains {
		if !m.HasCoordinates() {
			continue
		}
		days, err := h.fetchMountain(ctx, m, start, end)
		if err != nil {
			zap.L().Warn("historic fetch failed, skipping mountain",
				zap.String("mountain", m.Name),
				zap.Error(err),
			)
			continue
		}
		for date, sc := range days {
			if byDate[date] == nil {
				byDate[date] = make(map[string]SnapshotConditions)
			}
			byDate[date][m.Name] = sc
		}
	}

	written := 0
	for date, conditions := range byDate {
		path := filepath.Join(destDir, "conditions_"+date+".yaml")
		raw, err := yaml.Marshal(map[string]map[string]SnapshotConditions{"conditions": conditions})
		if err != nil {
			return written, eris.Wrapf(err, "eval: marshal fixture %s", date)
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return written, eris.Wrapf(err, "eval: write fixture %s", path)
		}
		written++
	}

	zap.L().Info("historic fixtures written",
		zap.Int("days", written),
		zap.String("dir", destDir),
	)
	return written, nil
}

// fetchMountain pulls one mountain's hourly archive and collapses it to one
// noon-sampled snapshot per day, with fresh snow summed over the trailing
// 24 hours.
func (h *HistoricFetcher) fetchMountain(ctx context.Context, m model.Mountain, start, end time.Time) (map[string]SnapshotConditions, error) {
	u := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%s&end_date=%s&hourly=%s&timezone=%s",
		h.baseURL, m.Lat, m.Lon,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		archiveHourlyVars, h.timezone,
	)

	body, err := h.fetcher.Download(ctx, u)
	if err != nil {
		return nil, eris.Wrapf(err, "eval: archive download for %s", m.Name)
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[archiveResponse](body)
	if err != nil {
		return nil, eris.Wrapf(err, "eval: archive decode for %s", m.Name)
	}

	hourly := resp.Hourly
	days := make(map[string]SnapshotConditions)
	for d := 0; ; d++ {
		date := start.AddDate(0, 0, d)
		if date.After(end) {
			break
		}
		noon := d*24 + 12
		if noon >= len(hourly.Temperature2M) {
			break
		}

		fresh := 0.0
		lo := noon - 24
		if lo < 0 {
			lo = 0
		}
		for i := lo; i < noon && i < len(hourly.Snowfall); i++ {
			if hourly.Snowfall[i] > 0 {
				fresh += hourly.Snowfall[i]
			}
		}

		sc := SnapshotConditions{
			FreshSnow24hIn: fresh / 2.54,
			TempF:          hourly.Temperature2M[noon]*9/5 + 32,
		}
		if noon < len(hourly.SnowDepth) {
			sc.SnowDepthIn = hourly.SnowDepth[noon] * 100 / 2.54 // meters to inches
		}
		if noon < len(hourly.WindSpeed10M) {
			sc.WindMPH = hourly.WindSpeed10M[noon] * 0.621371
		}
		if noon < len(hourly.Visibility) {
			sc.VisibilityMi = hourly.Visibility[noon] / 1609.344
		}
		if noon < len(hourly.WeatherCode) {
			sc.WeatherCode = hourly.WeatherCode[noon]
		}
		days[date.Format("2006-01-02")] = sc
	}
	return days, nil
}

// LoadConditionsFixture reads one per-date fixture back into a snapshot map.
func LoadConditionsFixture(path string) (map[string]SnapshotConditions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "eval: read fixture %s", path)
	}
	var f struct {
		Conditions map[string]SnapshotConditions `yaml:"conditions"`
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "eval: parse fixture %s", path)
	}
	return f.Conditions, nil
}
