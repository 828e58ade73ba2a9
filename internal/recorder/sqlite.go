package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SignalDesk/internal/logger"
)

// SQLiteRecorder persists observations to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_observations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			coin_id     TEXT NOT NULL,
			symbol      TEXT,
			source      TEXT,
			placeholder INTEGER NOT NULL DEFAULT 0,
			price       REAL,
			change_24h  REAL,
			samples     INTEGER,
			high_7d     REAL,
			low_7d      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_coin_ts ON market_observations(coin_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_failures (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			source       TEXT,
			coin_id      TEXT,
			rate_limited INTEGER NOT NULL DEFAULT 0,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fail_ts ON fetch_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordObservation(evt *ObservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO market_observations
		(timestamp, coin_id, symbol, source, placeholder, price, change_24h, samples, high_7d, low_7d)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.CoinID, evt.Symbol, evt.Source, evt.Placeholder,
		evt.Price, evt.Change24h, evt.Samples, evt.High7d, evt.Low7d,
	)
	return err
}

func (r *SQLiteRecorder) RecordFetchFailure(evt *FetchFailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_failures
		(timestamp, source, coin_id, rate_limited, error)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), evt.Source, evt.CoinID, evt.RateLimited, evt.Error,
	)
	return err
}

// CountObservations returns how many observations exist for coinID.
func (r *SQLiteRecorder) CountObservations(coinID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM market_observations WHERE coin_id = ?`, coinID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	logger.Info(context.Background(), "closing sqlite recorder")
	return r.db.Close()
}
