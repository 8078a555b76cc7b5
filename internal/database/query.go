package database

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoRuns is returned when the history is empty
var ErrNoRuns = errors.New("no runs recorded")

const runColumns = `
	SELECT id, started_at, finished_at, base_dir, status, files_removed,
	       methods_pruned, lines_removed, unresolved, error_message
	FROM runs
`

const eventColumns = `
	SELECT id, run_id, timestamp, action, path, file_name, signature,
	       start_line, end_line, lines_removed, reason, error_message
	FROM events
`

// GetRecentRuns returns the N most recent runs
func (d *RunDB) GetRecentRuns(limit int) ([]RunRecord, error) {
	return d.queryRuns(runColumns+`ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
}

// GetRun returns a single run by id
func (d *RunDB) GetRun(id int64) (*RunRecord, error) {
	runs, err := d.queryRuns(runColumns+`WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, sql.ErrNoRows
	}
	return &runs[0], nil
}

// GetLatestRunID returns the id of the most recent run
func (d *RunDB) GetLatestRunID() (int64, error) {
	var id int64
	err := d.db.QueryRow(`SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoRuns
	}
	return id, err
}

// GetRunEvents returns every event of a run in the order it happened
func (d *RunDB) GetRunEvents(runID int64) ([]EventRecord, error) {
	return d.queryEvents(eventColumns+`WHERE run_id = ? ORDER BY id ASC`, runID)
}

// GetUnresolved returns the skipped fragments of a run: the methods that
// still need manual follow-up
func (d *RunDB) GetUnresolved(runID int64) ([]EventRecord, error) {
	return d.queryEvents(eventColumns+`WHERE run_id = ? AND action = ? ORDER BY id ASC`, runID, ActionSkip)
}

// GetEventsByAction returns events filtered by action across all runs
func (d *RunDB) GetEventsByAction(action string) ([]EventRecord, error) {
	return d.queryEvents(eventColumns+`WHERE action = ? ORDER BY timestamp DESC, id DESC`, action)
}

// GetEventsByPath returns events whose path matches a SQL LIKE pattern
func (d *RunDB) GetEventsByPath(pathPattern string) ([]EventRecord, error) {
	return d.queryEvents(eventColumns+`WHERE path LIKE ? ORDER BY timestamp DESC, id DESC`, pathPattern)
}

// GetEventCountByAction returns count of events grouped by action since a time
func (d *RunDB) GetEventCountByAction(since time.Time) (map[string]int, error) {
	return d.countBy(`SELECT action, COUNT(*) FROM events WHERE timestamp >= ? GROUP BY action`, since)
}

// GetSkipCountByReason returns count of skipped fragments grouped by reason since a time
func (d *RunDB) GetSkipCountByReason(since time.Time) (map[string]int, error) {
	return d.countBy(`SELECT COALESCE(reason, ''), COUNT(*) FROM events WHERE action = 'SKIP' AND timestamp >= ? GROUP BY reason`, since)
}

// RunStats holds aggregated statistics
type RunStats struct {
	TotalRuns        int
	FailedRuns       int
	FilesRemoved     int
	MethodsPruned    int
	LinesRemoved     int
	Unresolved       int
	ByAction         map[string]int
	UnresolvedReason map[string]int
	StartDate        time.Time
	EndDate          time.Time
}

// GetRunStats returns statistics for runs started in the last days
func (d *RunDB) GetRunStats(days int) (*RunStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &RunStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'FAILED' THEN 1 END),
			COALESCE(SUM(files_removed), 0),
			COALESCE(SUM(methods_pruned), 0),
			COALESCE(SUM(lines_removed), 0),
			COALESCE(SUM(unresolved), 0)
		FROM runs
		WHERE started_at >= ?
	`, since).Scan(&stats.TotalRuns, &stats.FailedRuns, &stats.FilesRemoved,
		&stats.MethodsPruned, &stats.LinesRemoved, &stats.Unresolved)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetEventCountByAction(since)
	if err != nil {
		return nil, err
	}

	stats.UnresolvedReason, err = d.GetSkipCountByReason(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRuns removes runs and their events older than the given days
func (d *RunDB) DeleteOldRuns(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
		return 0, err
	}
	result, err := tx.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func (d *RunDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// queryRuns executes a run query and scans results
func (d *RunDB) queryRuns(query string, args ...interface{}) ([]RunRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var finished sql.NullTime
		var errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.StartedAt, &finished, &r.BaseDir, &r.Status, &r.FilesRemoved,
			&r.MethodsPruned, &r.LinesRemoved, &r.Unresolved, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}

// queryEvents executes an event query and scans results
func (d *RunDB) queryEvents(query string, args ...interface{}) ([]EventRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var r EventRecord
		var fileName, signature, reason, errMsg sql.NullString
		var start, end sql.NullInt64

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.Path, &fileName, &signature,
			&start, &end, &r.LinesRemoved, &reason, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.Signature = signature.String
		r.Reason = reason.String
		r.ErrorMessage = errMsg.String
		if start.Valid {
			v := int(start.Int64)
			r.StartLine = &v
		}
		if end.Valid {
			v := int(end.Int64)
			r.EndLine = &v
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
