// Package persistence provides SQLite-based storage for finished runs.
// Only run outputs are kept; tick-by-tick state is never written.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hailsim/internal/config"
	"github.com/talgya/hailsim/internal/engine"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string `db:"id" json:"id"`
	Strategy   string `db:"strategy" json:"strategy"`
	Seed       int64  `db:"seed" json:"seed"`
	Ticks      int64  `db:"ticks" json:"ticks"`
	TotalRides int    `db:"total_rides" json:"total_rides"`
	NumCars    int    `db:"num_cars" json:"num_cars"`
	CreatedAt  int64  `db:"created_at" json:"created_at"` // Unix seconds
}

// RunRecord is a stored run with its configuration and per-car tallies.
type RunRecord struct {
	RunSummary
	Config config.Config `json:"config"`
	PerCar []int         `json:"per_car"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		strategy TEXT NOT NULL,
		seed INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		total_rides INTEGER NOT NULL,
		num_cars INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS car_tallies (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		car_id INTEGER NOT NULL,
		rides INTEGER NOT NULL,
		PRIMARY KEY (run_id, car_id)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a finished run and its per-car tallies.
func (db *DB) SaveRun(res engine.Result, cfg config.Config) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, strategy, seed, ticks, total_rides, num_cars, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, string(res.Strategy), res.Seed, int64(res.Ticks), res.TotalRides,
		len(res.PerCar), string(cfgJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.Preparex("INSERT INTO car_tallies (run_id, car_id, rides) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rides := range res.PerCar {
		if _, err := stmt.Exec(res.RunID, i+1, rides); err != nil {
			return fmt.Errorf("insert tally for car %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run saved", "run_id", res.RunID, "cars", len(res.PerCar))
	return nil
}

// LoadRun returns a stored run by ID.
func (db *DB) LoadRun(id string) (RunRecord, error) {
	var row struct {
		RunSummary
		ConfigJSON string `db:"config_json"`
	}
	err := db.conn.Get(&row, `SELECT id, strategy, seed, ticks, total_rides, num_cars, created_at, config_json
		FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("load run %s: %w", id, err)
	}

	rec := RunRecord{RunSummary: row.RunSummary}
	if err := json.Unmarshal([]byte(row.ConfigJSON), &rec.Config); err != nil {
		return RunRecord{}, fmt.Errorf("decode config for run %s: %w", id, err)
	}

	if err := db.conn.Select(&rec.PerCar,
		"SELECT rides FROM car_tallies WHERE run_id = ? ORDER BY car_id", id,
	); err != nil {
		return RunRecord{}, fmt.Errorf("load tallies for run %s: %w", id, err)
	}
	return rec, nil
}

// DeleteRun removes a stored run. Its tallies go with it through the
// foreign key cascade.
func (db *DB) DeleteRun(id string) error {
	res, err := db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	slog.Info("run deleted", "run_id", id)
	return nil
}

// ListRuns returns the most recent runs, newest first. An empty strategy
// matches every run.
func (db *DB) ListRuns(strategy string, limit int) ([]RunSummary, error) {
	runs := []RunSummary{}
	query := `SELECT id, strategy, seed, ticks, total_rides, num_cars, created_at FROM runs`
	args := []any{}
	if strategy != "" {
		query += " WHERE strategy = ?"
		args = append(args, strategy)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	if err := db.conn.Select(&runs, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
