// Package catalog persists the static mountain catalog. Two backends are
// supported: SQLite for the single-user CLI case and Postgres for shared
// deployments. The recommendation pipeline only ever reads; writes happen
// through the import commands.
package catalog

import (
	"context"

	"github.com/powder-labs/powder/internal/model"
)

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	State string `json:"state,omitempty"`
	Pass  string `json:"pass,omitempty"`
}

// Store defines the persistence interface for the mountain catalog.
type Store interface {
	// UpsertMountain inserts or updates a mountain keyed by name and sets
	// its ID on insert.
	UpsertMountain(ctx context.Context, m *model.Mountain) error
	GetMountain(ctx context.Context, id int64) (*model.Mountain, error)
	// GetMountainByName matches case-insensitively on the exact name.
	GetMountainByName(ctx context.Context, name string) (*model.Mountain, error)
	ListMountains(ctx context.Context, filter Filter) ([]model.Mountain, error)
	// SetBoundaryAcres records the skiable area computed from boundary
	// polygons. Returns false when no mountain matched the name.
	SetBoundaryAcres(ctx context.Context, name string, acres float64) (bool, error)

	Migrate(ctx context.Context) error
	Close() error
}

// mountainColumns is the canonical column order shared by both backends.
const mountainColumns = `id, name, state, lat, lon, vertical_drop_ft, base_elevation_ft,
	summit_elevation_ft, num_trails, num_lifts, green_pct, blue_pct, black_pct,
	double_black_pct, terrain_parks, glades, pass_types, lift_types,
	allows_snowboarding, has_night_skiing, snowmaking_pct, avg_weekday_price,
	avg_weekend_price, website, boundary_acres`

// rowScanner abstracts *sql.Row, *sql.Rows, and pgx rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMountain reads one row in mountainColumns order. Multi-valued fields
// travel as comma-joined text.
func scanMountain(row rowScanner) (*model.Mountain, error) {
	var m model.Mountain
	var terrainParks, glades, passTypes, liftTypes string

	err := row.Scan(
		&m.ID, &m.Name, &m.State, &m.Lat, &m.Lon, &m.VerticalDropFt,
		&m.BaseElevationFt, &m.SummitElevationFt, &m.NumTrails, &m.NumLifts,
		&m.GreenPct, &m.BluePct, &m.BlackPct, &m.DoubleBlackPct,
		&terrainParks, &glades, &passTypes, &liftTypes,
		&m.AllowsSnowboarding, &m.HasNightSkiing, &m.SnowmakingPct,
		&m.AvgWeekdayPrice, &m.AvgWeekendPrice, &m.Website, &m.BoundaryAcres,
	)
	if err != nil {
		return nil, err
	}

	m.TerrainParks = model.SplitList(terrainParks)
	m.Glades = model.SplitList(glades)
	m.PassTypes = model.SplitList(passTypes)
	m.LiftTypes = model.SplitList(liftTypes)
	return &m, nil
}

// mountainArgs returns the insert/update values in mountainColumns order,
// without the id.
func mountainArgs(m *model.Mountain) []any {
	return []any{
		m.Name, m.State, m.Lat, m.Lon, m.VerticalDropFt,
		m.BaseElevationFt, m.SummitElevationFt, m.NumTrails, m.NumLifts,
		m.GreenPct, m.BluePct, m.BlackPct, m.DoubleBlackPct,
		model.JoinList(m.TerrainParks), model.JoinList(m.Glades),
		model.JoinList(m.PassTypes), model.JoinList(m.LiftTypes),
		m.AllowsSnowboarding, m.HasNightSkiing, m.SnowmakingPct,
		m.AvgWeekdayPrice, m.AvgWeekendPrice, m.Website, m.BoundaryAcres,
	}
}
