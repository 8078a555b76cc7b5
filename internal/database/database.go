package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Event actions
const (
	ActionRemoveFile  = "REMOVE_FILE"
	ActionPruneMethod = "PRUNE_METHOD"
	ActionSkip        = "SKIP"
	ActionError       = "ERROR"
)

// Run statuses
const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// RunDB manages the SQLite database for prune run history
type RunDB struct {
	db *sql.DB
}

// RunRecord is one invocation of the prune run
type RunRecord struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    *time.Time
	BaseDir       string
	Status        string
	FilesRemoved  int
	MethodsPruned int
	LinesRemoved  int
	Unresolved    int
	ErrorMessage  string
}

// EventRecord is one file removal, pruned method, skipped fragment or error
type EventRecord struct {
	ID           int64
	RunID        int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	Signature    string
	StartLine    *int
	EndLine      *int
	LinesRemoved int
	Reason       string
	ErrorMessage string
}

// NewRunDB creates a new database connection and initializes schema
func NewRunDB(dbPath string) (*RunDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing,
	// _foreign_keys applies to every pooled connection
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Executing a query creates the file if it doesn't exist
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	rdb := &RunDB{db: db}
	if err = rdb.initSchema(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *RunDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		base_dir TEXT NOT NULL,
		status TEXT NOT NULL,
		files_removed INTEGER NOT NULL DEFAULT 0,
		methods_pruned INTEGER NOT NULL DEFAULT 0,
		lines_removed INTEGER NOT NULL DEFAULT 0,
		unresolved INTEGER NOT NULL DEFAULT 0,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		signature TEXT,
		start_line INTEGER,
		end_line INTEGER,
		lines_removed INTEGER NOT NULL DEFAULT 0,
		reason TEXT,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
	CREATE INDEX IF NOT EXISTS idx_events_path ON events(path);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// StartRun inserts a RUNNING row and returns its id
func (d *RunDB) StartRun(baseDir string, startedAt time.Time) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO runs (started_at, base_dir, status) VALUES (?, ?, ?)`,
		startedAt, baseDir, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun stores the final counters and status of a run
func (d *RunDB) FinishRun(rec RunRecord) error {
	finished := time.Now()
	if rec.FinishedAt != nil {
		finished = *rec.FinishedAt
	}
	_, err := d.db.Exec(`
	UPDATE runs SET
		finished_at = ?, status = ?, files_removed = ?, methods_pruned = ?,
		lines_removed = ?, unresolved = ?, error_message = ?
	WHERE id = ?`,
		finished, rec.Status, rec.FilesRemoved, rec.MethodsPruned,
		rec.LinesRemoved, rec.Unresolved, rec.ErrorMessage, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", rec.ID, err)
	}
	return nil
}

// RecordEvent inserts one event row
func (d *RunDB) RecordEvent(ev EventRecord) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.FileName == "" {
		ev.FileName = filepath.Base(ev.Path)
	}
	_, err := d.db.Exec(`
	INSERT INTO events (
		run_id, timestamp, action, path, file_name, signature,
		start_line, end_line, lines_removed, reason, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Timestamp, ev.Action, ev.Path, ev.FileName, ev.Signature,
		ev.StartLine, ev.EndLine, ev.LinesRemoved, ev.Reason, ev.ErrorMessage,
	)
	return err
}

// Close closes the database connection
func (d *RunDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database
func (d *RunDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
