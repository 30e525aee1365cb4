package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"StockScreener/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			scan_id      TEXT,
			screen       TEXT NOT NULL,
			trigger_type TEXT,
			total        INTEGER,
			matched      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_conditions (
			run_id   INTEGER NOT NULL REFERENCES scan_runs(id),
			position INTEGER NOT NULL,
			name     TEXT NOT NULL,
			passed   INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS scan_matches (
			run_id INTEGER NOT NULL REFERENCES scan_runs(id),
			code   TEXT NOT NULL,
			name   TEXT,
			close  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_code ON scan_matches(code)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores a run with its per-condition counts and matches in one
// transaction.
func (r *SQLiteRecorder) RecordScan(res *model.ScreenResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := res.EvaluatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	out, err := tx.Exec(`INSERT INTO scan_runs
		(timestamp, scan_id, screen, trigger_type, total, matched)
		VALUES (?,?,?,?,?,?)`,
		ts.Unix(), res.ScanID, res.Screen, string(res.TriggerType), res.Total, len(res.Matches),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := out.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for i, c := range res.Conditions {
		if _, err := tx.Exec(`INSERT INTO scan_conditions (run_id, position, name, passed) VALUES (?,?,?,?)`,
			runID, i, c.Name, c.Passed); err != nil {
			return fmt.Errorf("insert condition: %w", err)
		}
	}
	for _, m := range res.Matches {
		if _, err := tx.Exec(`INSERT INTO scan_matches (run_id, code, name, close) VALUES (?,?,?,?)`,
			runID, m.Code, m.Name, m.Close); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, scan_id, screen, trigger_type, total, matched
		FROM scan_runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			s       RunSummary
			ts      int64
			scanID  sql.NullString
			trigger string
		)
		if err := rows.Scan(&s.ID, &ts, &scanID, &s.Screen, &trigger, &s.Total, &s.Matched); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0)
		s.ScanID = scanID.String
		s.TriggerType = model.TriggerType(trigger)
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// Matches returns the codes matched by a run, in the order they were stored.
func (r *SQLiteRecorder) Matches(runID int64) ([]model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT code, name, close FROM scan_matches WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.Code, &m.Name, &m.Close); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
