package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/powder-labs/powder/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS mountains (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	name                TEXT NOT NULL,
	state               TEXT NOT NULL DEFAULT '',
	lat                 REAL NOT NULL DEFAULT 0,
	lon                 REAL NOT NULL DEFAULT 0,
	vertical_drop_ft    INTEGER NOT NULL DEFAULT 0,
	base_elevation_ft   INTEGER NOT NULL DEFAULT 0,
	summit_elevation_ft INTEGER NOT NULL DEFAULT 0,
	num_trails          INTEGER NOT NULL DEFAULT 0,
	num_lifts           INTEGER NOT NULL DEFAULT 0,
	green_pct           INTEGER NOT NULL DEFAULT 0,
	blue_pct            INTEGER NOT NULL DEFAULT 0,
	black_pct           INTEGER NOT NULL DEFAULT 0,
	double_black_pct    INTEGER NOT NULL DEFAULT 0,
	terrain_parks       TEXT NOT NULL DEFAULT '',
	glades              TEXT NOT NULL DEFAULT '',
	pass_types          TEXT NOT NULL DEFAULT '',
	lift_types          TEXT NOT NULL DEFAULT '',
	allows_snowboarding INTEGER NOT NULL DEFAULT 1,
	has_night_skiing    INTEGER NOT NULL DEFAULT 0,
	snowmaking_pct      INTEGER NOT NULL DEFAULT 0,
	avg_weekday_price   INTEGER NOT NULL DEFAULT 0,
	avg_weekend_price   INTEGER NOT NULL DEFAULT 0,
	website             TEXT NOT NULL DEFAULT '',
	boundary_acres      REAL NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_mountains_name ON mountains(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_mountains_state ON mountains(state);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var sqliteUpsert = fmt.Sprintf(`INSERT INTO mountains (%s) VALUES (%s)
ON CONFLICT(name COLLATE NOCASE) DO UPDATE SET %s`,
	strings.TrimPrefix(mountainColumns, "id, "),
	placeholders(24),
	upsertSetClause(),
)

func (s *SQLiteStore) UpsertMountain(ctx context.Context, m *model.Mountain) error {
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, mountainArgs(m)...); err != nil {
		return eris.Wrapf(err, "sqlite: upsert mountain %s", m.Name)
	}

	row := s.db.QueryRowContext(ctx, `SELECT id FROM mountains WHERE name = ? COLLATE NOCASE`, m.Name)
	if err := row.Scan(&m.ID); err != nil {
		return eris.Wrapf(err, "sqlite: resolve id for %s", m.Name)
	}
	return nil
}

func (s *SQLiteStore) GetMountain(ctx context.Context, id int64) (*model.Mountain, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mountainColumns+` FROM mountains WHERE id = ?`, id)
	m, err := scanMountain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get mountain %d", id)
	}
	return m, nil
}

func (s *SQLiteStore) GetMountainByName(ctx context.Context, name string) (*model.Mountain, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mountainColumns+` FROM mountains WHERE name = ? COLLATE NOCASE`, name)
	m, err := scanMountain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get mountain %q", name)
	}
	return m, nil
}

func (s *SQLiteStore) ListMountains(ctx context.Context, filter Filter) ([]model.Mountain, error) {
	query := `SELECT ` + mountainColumns + ` FROM mountains`
	var clauses []string
	var args []any
	if filter.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, filter.State)
	}
	if filter.Pass != "" {
		// Comma-joined list match; cheap and correct for catalog-sized data.
		clauses = append(clauses, "(',' || LOWER(pass_types) || ',') LIKE ?")
		args = append(args, "%,"+strings.ToLower(filter.Pass)+",%")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list mountains")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Mountain
	for rows.Next() {
		m, err := scanMountain(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mountain")
		}
		out = append(out, *m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list mountains")
}

func (s *SQLiteStore) SetBoundaryAcres(ctx context.Context, name string, acres float64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE mountains SET boundary_acres = ? WHERE name = ? COLLATE NOCASE`, acres, name)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: set boundary for %q", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

// placeholders renders n comma-separated "?" marks.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// upsertSetClause renders "col = excluded.col" for every non-key column.
func upsertSetClause() string {
	cols := columnNames()[2:] // skip id and name
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " = excluded." + c
	}
	return strings.Join(parts, ", ")
}

// columnNames splits mountainColumns into individual identifiers.
func columnNames() []string {
	fields := strings.Split(mountainColumns, ",")
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
