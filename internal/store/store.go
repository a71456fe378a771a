// Package store persists scheduled matches and the results of simulated
// runs. SQLite (modernc, pure Go) is the default; Postgres is available
// through lib/pq for shared deployments.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Garsondee/Match-Sim/internal/game"
)

// ErrNotFound is returned when a match or result does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidMatch is returned for match rows that fail validation.
var ErrInvalidMatch = errors.New("invalid match")

// Match statuses.
const (
	StatusScheduled = "scheduled"
	StatusPlayed    = "played"
	StatusCancelled = "cancelled"
)

// Match is one row of the matches table.
type Match struct {
	ID     int64  `db:"id" json:"id"`
	Date   string `db:"match_date" json:"date"` // YYYY-MM-DD
	Venue  string `db:"venue" json:"venue"`
	Status string `db:"status" json:"status"`
}

// Validate checks the fields a caller supplies.
func (m Match) Validate() error {
	if _, err := time.Parse(time.DateOnly, m.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidMatch, m.Date)
	}
	if strings.TrimSpace(m.Venue) == "" {
		return fmt.Errorf("%w: venue is required", ErrInvalidMatch)
	}
	switch m.Status {
	case StatusScheduled, StatusPlayed, StatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMatch, m.Status)
	}
	return nil
}

// Result is the stored outcome of one simulated run.
type Result struct {
	ID         int64      `json:"id"`
	MatchID    int64      `json:"match_id"`
	RunID      string     `json:"run_id"`
	Seed       int64      `json:"seed"`
	ScoreA     int        `json:"score_a"`
	ScoreB     int        `json:"score_b"`
	Stats      game.Stats `json:"stats"`
	FinishedAt time.Time  `json:"finished_at"`
}

// resultRow is the flattened table form of Result.
type resultRow struct {
	ID         int64  `db:"id"`
	MatchID    int64  `db:"match_id"`
	RunID      string `db:"run_id"`
	Seed       int64  `db:"seed"`
	ScoreA     int    `db:"score_a"`
	ScoreB     int    `db:"score_b"`
	StatsJSON  string `db:"stats_json"`
	FinishedAt string `db:"finished_at"`
}

func (r resultRow) result() (Result, error) {
	res := Result{
		ID:      r.ID,
		MatchID: r.MatchID,
		RunID:   r.RunID,
		Seed:    r.Seed,
		ScoreA:  r.ScoreA,
		ScoreB:  r.ScoreB,
	}
	if err := json.Unmarshal([]byte(r.StatsJSON), &res.Stats); err != nil {
		return Result{}, fmt.Errorf("decode stats for run %s: %w", r.RunID, err)
	}
	t, err := time.Parse(time.RFC3339, r.FinishedAt)
	if err != nil {
		return Result{}, fmt.Errorf("decode finished_at for run %s: %w", r.RunID, err)
	}
	res.FinishedAt = t
	return res, nil
}

// Store wraps the database connection.
type Store struct {
	conn   *sqlx.DB
	driver string
}

// Open connects to driver ("sqlite" or "postgres") at dsn and applies the
// schema. For sqlite, dsn is a file path or ":memory:".
func Open(driver, dsn string) (*Store, error) {
	var (
		conn *sqlx.DB
		err  error
	)
	switch driver {
	case "sqlite":
		conn, err = sqlx.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// One writer; also keeps ":memory:" to a single database.
			conn.SetMaxOpenConns(1)
		}
	case "postgres":
		conn, err = sqlx.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{conn: conn, driver: driver}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func sqliteDSN(dsn string) string {
	if dsn == ":memory:" {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		id = "BIGSERIAL PRIMARY KEY"
	}
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS matches (
		id %[1]s,
		match_date TEXT NOT NULL,
		venue TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id %[1]s,
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		run_id TEXT NOT NULL UNIQUE,
		seed BIGINT NOT NULL,
		score_a INTEGER NOT NULL,
		score_b INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_match ON results(match_id);
	`, id)
	_, err := s.conn.Exec(schema)
	return err
}

// CreateMatch inserts m and returns it with its new id.
func (s *Store) CreateMatch(ctx context.Context, m Match) (Match, error) {
	if err := m.Validate(); err != nil {
		return Match{}, err
	}
	q := s.conn.Rebind(`INSERT INTO matches (match_date, venue, status) VALUES (?, ?, ?) RETURNING id`)
	if err := s.conn.GetContext(ctx, &m.ID, q, m.Date, m.Venue, m.Status); err != nil {
		return Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

// GetMatch loads one match.
func (s *Store) GetMatch(ctx context.Context, id int64) (Match, error) {
	var m Match
	q := s.conn.Rebind(`SELECT id, match_date, venue, status FROM matches WHERE id = ?`)
	if err := s.conn.GetContext(ctx, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
		}
		return Match{}, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// ListMatches returns every match ordered by date then id.
func (s *Store) ListMatches(ctx context.Context) ([]Match, error) {
	matches := []Match{}
	if err := s.conn.SelectContext(ctx, &matches,
		`SELECT id, match_date, venue, status FROM matches ORDER BY match_date, id`); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// UpdateMatch overwrites the editable fields of an existing match.
func (s *Store) UpdateMatch(ctx context.Context, m Match) error {
	if err := m.Validate(); err != nil {
		return err
	}
	q := s.conn.Rebind(`UPDATE matches SET match_date = ?, venue = ?, status = ? WHERE id = ?`)
	res, err := s.conn.ExecContext(ctx, q, m.Date, m.Venue, m.Status, m.ID)
	if err != nil {
		return fmt.Errorf("update match %d: %w", m.ID, err)
	}
	return expectOne(res, "match", m.ID)
}

// DeleteMatch removes a match and its results.
func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM results WHERE match_id = ?`), id); err != nil {
		return fmt.Errorf("delete results for match %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM matches WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	if err := expectOne(res, "match", id); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveResult records a finished run and marks its match as played.
func (s *Store) SaveResult(ctx context.Context, r Result) (Result, error) {
	statsJSON, err := json.Marshal(r.Stats)
	if err != nil {
		return Result{}, fmt.Errorf("encode stats: %w", err)
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	q := tx.Rebind(`INSERT INTO results
		(match_id, run_id, seed, score_a, score_b, stats_json, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &r.ID, q,
		r.MatchID, r.RunID, r.Seed, r.ScoreA, r.ScoreB, string(statsJSON),
		r.FinishedAt.UTC().Format(time.RFC3339)); err != nil {
		return Result{}, fmt.Errorf("insert result for run %s: %w", r.RunID, err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE matches SET status = ? WHERE id = ?`), StatusPlayed, r.MatchID)
	if err != nil {
		return Result{}, fmt.Errorf("mark match %d played: %w", r.MatchID, err)
	}
	if err := expectOne(res, "match", r.MatchID); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit result: %w", err)
	}
	return r, nil
}

// ResultsForMatch returns every stored run of a match, oldest first.
func (s *Store) ResultsForMatch(ctx context.Context, matchID int64) ([]Result, error) {
	var rows []resultRow
	q := s.conn.Rebind(`SELECT id, match_id, run_id, seed, score_a, score_b, stats_json, finished_at
		FROM results WHERE match_id = ? ORDER BY id`)
	if err := s.conn.SelectContext(ctx, &rows, q, matchID); err != nil {
		return nil, fmt.Errorf("list results for match %d: %w", matchID, err)
	}
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		r, err := row.result()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ResultByRun loads the result stored for one run.
func (s *Store) ResultByRun(ctx context.Context, runID string) (Result, error) {
	var row resultRow
	q := s.conn.Rebind(`SELECT id, match_id, run_id, seed, score_a, score_b, stats_json, finished_at
		FROM results WHERE run_id = ?`)
	if err := s.conn.GetContext(ctx, &row, q, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return Result{}, fmt.Errorf("get result for run %s: %w", runID, err)
	}
	return row.result()
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
