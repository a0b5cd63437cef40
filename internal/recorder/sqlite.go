package recorder

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the download journal to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log logrus.FieldLogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log logrus.FieldLogger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create journal dir")
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db, log: log.WithField("component", "journal")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	r.log.Infof("sqlite journal opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			contract    TEXT,
			bar_size    TEXT,
			duration    TEXT,
			status      TEXT NOT NULL,
			bars        INTEGER,
			path        TEXT,
			error       TEXT,
			elapsed_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_run ON downloads(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_symbol ON downloads(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDownload(evt *DownloadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO downloads
		(run_id, timestamp, symbol, contract, bar_size, duration, status, bars, path, error, elapsed_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, evt.Started.Unix(), evt.Symbol, evt.Contract, evt.BarSize, evt.Duration,
		evt.Status, evt.Bars, evt.Path, evt.Error, evt.Elapsed.Milliseconds(),
	)
	return errors.Wrap(err, "insert download")
}

// Downloads returns the journal rows of one run in insertion order.
func (r *SQLiteRecorder) Downloads(runID string) ([]DownloadEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, contract, bar_size, duration, status, bars, path, error
		FROM downloads WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query downloads")
	}
	defer rows.Close()

	var out []DownloadEvent
	for rows.Next() {
		evt := DownloadEvent{RunID: runID}
		if err := rows.Scan(&evt.Symbol, &evt.Contract, &evt.BarSize, &evt.Duration,
			&evt.Status, &evt.Bars, &evt.Path, &evt.Error); err != nil {
			return nil, errors.Wrap(err, "scan download")
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite journal")
	return r.db.Close()
}
