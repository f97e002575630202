package evaluate

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT NOT NULL,
	error_name  TEXT NOT NULL,
	header      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (run_id, error_name)
);

CREATE TABLE IF NOT EXISTS errors (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	error_name  TEXT NOT NULL,
	trial       INTEGER NOT NULL,
	value       REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS errors_by_name ON errors (error_name, id);
`

// SQLiteLog stores errors in a SQLite database. Every SQLiteLog is one run,
// identified by a random id; Values spans all runs in the database.
type SQLiteLog struct {
	db    *sql.DB
	runID string

	mu     sync.Mutex
	trials map[string]int
}

var _ ErrorLog = (*SQLiteLog)(nil)

// OpenSQLiteLog opens (or creates) the database at path and starts a new run.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteLog{
		db:     db,
		runID:  uuid.NewString(),
		trials: make(map[string]int),
	}, nil
}

// Close closes the database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

// RunID identifies the rows written through this log.
func (l *SQLiteLog) RunID() string {
	return l.runID
}

// WriteHeader implements ErrorLog.
func (l *SQLiteLog) WriteHeader(name, text string) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO runs (run_id, error_name, header, created_at) VALUES (?, ?, ?, ?)`,
		l.runID, name, text, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Append implements ErrorLog. Values of one name are numbered by trial from 0.
func (l *SQLiteLog) Append(name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	trial := l.trials[name]
	_, err := l.db.Exec(
		`INSERT INTO errors (run_id, error_name, trial, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.runID, name, trial, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append error: %w", err)
	}
	l.trials[name] = trial + 1
	return nil
}

// Values implements ErrorLog.
func (l *SQLiteLog) Values(name string) ([]float64, error) {
	return l.query(`SELECT value FROM errors WHERE error_name = ? ORDER BY id`, name)
}

// RunValues returns the values of name appended through this log only.
func (l *SQLiteLog) RunValues(name string) ([]float64, error) {
	return l.query(`SELECT value FROM errors WHERE error_name = ? AND run_id = ? ORDER BY trial`, name, l.runID)
}

func (l *SQLiteLog) query(q string, args ...any) ([]float64, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query errors: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan error value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
