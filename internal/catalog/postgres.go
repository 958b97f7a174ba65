package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/powder-labs/powder/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used in tests with pgxmock).
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS mountains (
	id                  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name                TEXT NOT NULL,
	state               TEXT NOT NULL DEFAULT '',
	lat                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	lon                 DOUBLE PRECISION NOT NULL DEFAULT 0,
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
	allows_snowboarding BOOLEAN NOT NULL DEFAULT TRUE,
	has_night_skiing    BOOLEAN NOT NULL DEFAULT FALSE,
	snowmaking_pct      INTEGER NOT NULL DEFAULT 0,
	avg_weekday_price   INTEGER NOT NULL DEFAULT 0,
	avg_weekend_price   INTEGER NOT NULL DEFAULT 0,
	website             TEXT NOT NULL DEFAULT '',
	boundary_acres      DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_mountains_name ON mountains(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_mountains_state ON mountains(state);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var postgresUpsert = fmt.Sprintf(`INSERT INTO mountains (%s) VALUES (%s)
ON CONFLICT (LOWER(name)) DO UPDATE SET %s RETURNING id`,
	strings.TrimPrefix(mountainColumns, "id, "),
	dollarPlaceholders(24),
	upsertSetClause(),
)

func (s *PostgresStore) UpsertMountain(ctx context.Context, m *model.Mountain) error {
	row := s.pool.QueryRow(ctx, postgresUpsert, mountainArgs(m)...)
	if err := row.Scan(&m.ID); err != nil {
		return eris.Wrapf(err, "postgres: upsert mountain %s", m.Name)
	}
	return nil
}

func (s *PostgresStore) GetMountain(ctx context.Context, id int64) (*model.Mountain, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+mountainColumns+` FROM mountains WHERE id = $1`, id)
	m, err := scanMountain(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get mountain %d", id)
	}
	return m, nil
}

func (s *PostgresStore) GetMountainByName(ctx context.Context, name string) (*model.Mountain, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+mountainColumns+` FROM mountains WHERE LOWER(name) = LOWER($1)`, name)
	m, err := scanMountain(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get mountain %q", name)
	}
	return m, nil
}

func (s *PostgresStore) ListMountains(ctx context.Context, filter Filter) ([]model.Mountain, error) {
	query := `SELECT ` + mountainColumns + ` FROM mountains`
	var clauses []string
	var args []any
	if filter.State != "" {
		args = append(args, filter.State)
		clauses = append(clauses, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.Pass != "" {
		args = append(args, "%,"+strings.ToLower(filter.Pass)+",%")
		clauses = append(clauses, fmt.Sprintf("(',' || LOWER(pass_types) || ',') LIKE $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list mountains")
	}
	defer rows.Close()

	var out []model.Mountain
	for rows.Next() {
		m, err := scanMountain(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan mountain")
		}
		out = append(out, *m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list mountains")
}

func (s *PostgresStore) SetBoundaryAcres(ctx context.Context, name string, acres float64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE mountains SET boundary_acres = $1 WHERE LOWER(name) = LOWER($2)`, acres, name)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: set boundary for %q", name)
	}
	return tag.RowsAffected() > 0, nil
}

// dollarPlaceholders renders "$1, $2, ..., $n".
func dollarPlaceholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
