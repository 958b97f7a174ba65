package catalog

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/fetcher"
	"github.com/powder-labs/powder/internal/model"
)

// mountainRecord mirrors the catalog source schema. Multi-valued fields come
// in as comma-separated text; elevation fields use the source's short names.
type mountainRecord struct {
	Name               string  `json:"name"`
	State              string  `json:"state"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	VerticalDrop       int     `json:"vertical_drop"`
	BaseElevation      int     `json:"base_elevation"`
	SummitElevation    int     `json:"summit_elevation"`
	NumTrails          int     `json:"num_trails"`
	NumLifts           int     `json:"num_lifts"`
	GreenPct           int     `json:"green_pct"`
	BluePct            int     `json:"blue_pct"`
	BlackPct           int     `json:"black_pct"`
	DoubleBlackPct     int     `json:"double_black_pct"`
	TerrainParks       string  `json:"terrain_parks"`
	Glades             string  `json:"glades"`
	PassTypes          string  `json:"pass_types"`
	LiftTypes          string  `json:"lift_types"`
	AllowsSnowboarding *bool   `json:"allows_snowboarding"`
	HasNightSkiing     bool    `json:"has_night_skiing"`
	SnowmakingPct      int     `json:"snowmaking_pct"`
	AvgWeekdayPrice    int     `json:"avg_weekday_price"`
	AvgWeekendPrice    int     `json:"avg_weekend_price"`
	Website            string  `json:"website"`
}

func (r mountainRecord) toMountain() model.Mountain {
	allowsBoards := true
	if r.AllowsSnowboarding != nil {
		allowsBoards = *r.AllowsSnowboarding
	}
	return model.Mountain{
		Name:               strings.TrimSpace(r.Name),
		State:              strings.ToUpper(strings.TrimSpace(r.State)),
		Lat:                r.Lat,
		Lon:                r.Lon,
		VerticalDropFt:     r.VerticalDrop,
		BaseElevationFt:    r.BaseElevation,
		SummitElevationFt:  r.SummitElevation,
		NumTrails:          r.NumTrails,
		NumLifts:           r.NumLifts,
		GreenPct:           r.GreenPct,
		BluePct:            r.BluePct,
		BlackPct:           r.BlackPct,
		DoubleBlackPct:     r.DoubleBlackPct,
		TerrainParks:       model.SplitList(r.TerrainParks),
		Glades:             model.SplitList(r.Glades),
		PassTypes:          model.SplitList(r.PassTypes),
		LiftTypes:          model.SplitList(r.LiftTypes),
		AllowsSnowboarding: allowsBoards,
		HasNightSkiing:     r.HasNightSkiing,
		SnowmakingPct:      r.SnowmakingPct,
		AvgWeekdayPrice:    r.AvgWeekdayPrice,
		AvgWeekendPrice:    r.AvgWeekendPrice,
		Website:            strings.TrimSpace(r.Website),
	}
}

// Importer loads mountain records into a Store from JSONL, CSV, or XLSX
// sources. Records without a name are skipped with a warning; everything
// else upserts by name.
type Importer struct {
	store Store
}

// NewImporter creates an Importer writing to the given store.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// ImportJSONL reads one JSON mountain record per line.
func (i *Importer) ImportJSONL(ctx context.Context, r io.Reader) (int, error) {
	records, errs := fetcher.DecodeJSONLines[mountainRecord](ctx, r)

	var n int
	for rec := range records {
		if i.upsert(ctx, rec.toMountain()) {
			n++
		}
	}
	if err := <-errs; err != nil {
		return n, eris.Wrap(err, "catalog: import jsonl")
	}
	return n, nil
}

// ImportCSV reads a header-mapped CSV of mountain records.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{})

	var header []string
	var n int
	for row := range rows {
		if header == nil {
			header = row
			continue
		}
		if i.upsert(ctx, rowToMountain(header, row)) {
			n++
		}
	}
	if err := <-errs; err != nil {
		return n, eris.Wrap(err, "catalog: import csv")
	}
	return n, nil
}

// ImportXLSX reads the first sheet of a workbook, header row first.
func (i *Importer) ImportXLSX(ctx context.Context, path string) (int, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return 0, eris.Wrap(err, "catalog: import xlsx")
	}
	if len(rows) < 2 {
		return 0, nil
	}

	var n int
	for _, row := range rows[1:] {
		if i.upsert(ctx, rowToMountain(rows[0], row)) {
			n++
		}
	}
	return n, nil
}

func (i *Importer) upsert(ctx context.Context, m model.Mountain) bool {
	if m.Name == "" {
		zap.L().Warn("skipping catalog record without a name", zap.String("state", m.State))
		return false
	}
	if err := i.store.UpsertMountain(ctx, &m); err != nil {
		zap.L().Warn("skipping catalog record",
			zap.String("mountain", m.Name),
			zap.Error(err),
		)
		return false
	}
	return true
}

// rowToMountain maps a header-indexed row onto a record. Unknown columns are
// ignored so source files can carry extra fields.
func rowToMountain(header, row []string) model.Mountain {
	var rec mountainRecord
	for idx, col := range header {
		if idx >= len(row) {
			break
		}
		val := strings.TrimSpace(row[idx])
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			rec.Name = val
		case "state":
			rec.State = val
		case "lat":
			rec.Lat = parseFloat(val)
		case "lon":
			rec.Lon = parseFloat(val)
		case "vertical_drop":
			rec.VerticalDrop = parseInt(val)
		case "base_elevation":
			rec.BaseElevation = parseInt(val)
		case "summit_elevation":
			rec.SummitElevation = parseInt(val)
		case "num_trails":
			rec.NumTrails = parseInt(val)
		case "num_lifts":
			rec.NumLifts = parseInt(val)
		case "green_pct":
			rec.GreenPct = parseInt(val)
		case "blue_pct":
			rec.BluePct = parseInt(val)
		case "black_pct":
			rec.BlackPct = parseInt(val)
		case "double_black_pct":
			rec.DoubleBlackPct = parseInt(val)
		case "terrain_parks":
			rec.TerrainParks = val
		case "glades":
			rec.Glades = val
		case "pass_types":
			rec.PassTypes = val
		case "lift_types":
			rec.LiftTypes = val
		case "allows_snowboarding":
			b := parseBool(val, true)
			rec.AllowsSnowboarding = &b
		case "has_night_skiing":
			rec.HasNightSkiing = parseBool(val, false)
		case "snowmaking_pct":
			rec.SnowmakingPct = parseInt(val)
		case "avg_weekday_price":
			rec.AvgWeekdayPrice = parseInt(val)
		case "avg_weekend_price":
			rec.AvgWeekendPrice = parseInt(val)
		case "website":
			rec.Website = val
		}
	}
	return rec.toMountain()
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
