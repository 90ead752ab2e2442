package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan history to a SQLite database.
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

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_results (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			date_label TEXT,
			code       TEXT NOT NULL,
			name       TEXT,
			direction  TEXT,
			status     TEXT,
			last       REAL,
			mean       REAL,
			bars_used  INTEGER,
			strength   REAL,
			r_squared  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_ts ON scan_results(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_code ON scan_results(code)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan appends one row per instrument verdict in a single
// transaction.
func (r *SQLiteRecorder) RecordScan(rec *ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	now := time.Now().Unix()
	for _, res := range rec.Results {
		v := res.Verdict
		_, err := tx.Exec(`INSERT INTO scan_results
			(timestamp, date_label, code, name, direction, status, last, mean, bars_used, strength, r_squared)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			now, rec.DateLabel, res.Code, res.Name,
			string(v.Direction), string(v.Status),
			nullable(v.Last), nullable(v.Mean), v.BarsUsed,
			nullable(v.Strength), nullable(v.RSquared),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert scan result: %w", err)
		}
	}
	return tx.Commit()
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
