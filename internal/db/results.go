package db

import (
	"fmt"
	"log"
	"time"

	"char-appraiser/internal/engine"
)

// AppraisalRun is one recorded batch appraisal.
type AppraisalRun struct {
	ID         int64  `json:"id"`
	Timestamp  string `json:"timestamp"`
	Requested  int    `json:"requested"`
	Valued     int    `json:"valued"`
	CorpusSize int    `json:"corpus_size"`
	DurationMs int64  `json:"duration_ms"`
}

// AppraisalRow is a persisted per-listing valuation within a run.
type AppraisalRow struct {
	ListingID int64 `json:"listing_id"`
	engine.ValuationResult
}

// InsertAppraisalRun records a batch appraisal and its per-listing results.
// Returns the run ID, or 0 on failure (history is best-effort and must not
// fail the request that produced it).
func (d *DB) InsertAppraisalRun(requested, corpusSize int, durationMs int64, results map[int64]*engine.ValuationResult) int64 {
	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertAppraisalRun: begin: %v", err)
		return 0
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO appraisal_runs (timestamp, requested, valued, corpus_size, duration_ms)
		VALUES (?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), requested, len(results), corpusSize, durationMs)
	if err != nil {
		log.Printf("[DB] InsertAppraisalRun: insert run: %v", err)
		return 0
	}
	runID, _ := res.LastInsertId()

	stmt, err := tx.Prepare(`
		INSERT INTO appraisal_results
			(run_id, listing_id, estimated_value, min_price, max_price, sample_size, item_bonus, confidence)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		log.Printf("[DB] InsertAppraisalRun: prepare: %v", err)
		return 0
	}
	defer stmt.Close()

	for listingID, r := range results {
		if _, err := stmt.Exec(runID, listingID,
			r.EstimatedValue, r.MinPrice, r.MaxPrice, r.SampleSize, r.ItemBonus, r.Confidence); err != nil {
			log.Printf("[DB] InsertAppraisalRun: insert result: %v", err)
			return 0
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertAppraisalRun: commit: %v", err)
		return 0
	}
	return runID
}

// GetAppraisalRuns returns the most recent appraisal runs.
func (d *DB) GetAppraisalRuns(limit int) []AppraisalRun {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(`
		SELECT id, timestamp, requested, valued, corpus_size, duration_ms
		FROM appraisal_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var runs []AppraisalRun
	for rows.Next() {
		var r AppraisalRun
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Requested, &r.Valued, &r.CorpusSize, &r.DurationMs); err != nil {
			continue
		}
		runs = append(runs, r)
	}
	return runs
}

// GetAppraisalResults returns the per-listing valuations of a run.
func (d *DB) GetAppraisalResults(runID int64) ([]AppraisalRow, error) {
	rows, err := d.sql.Query(`
		SELECT listing_id, estimated_value, min_price, max_price, sample_size, item_bonus, confidence
		FROM appraisal_results WHERE run_id = ? ORDER BY listing_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("appraisal results: %w", err)
	}
	defer rows.Close()

	var out []AppraisalRow
	for rows.Next() {
		var r AppraisalRow
		if err := rows.Scan(&r.ListingID, &r.EstimatedValue, &r.MinPrice, &r.MaxPrice,
			&r.SampleSize, &r.ItemBonus, &r.Confidence); err != nil {
			return nil, fmt.Errorf("scan appraisal result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CleanupOldRuns deletes appraisal runs (and their results) older than the
// given number of days. Should be called periodically to bound DB growth.
func (d *DB) CleanupOldRuns(days int) {
	if days <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	res, err := d.sql.Exec(`
		DELETE FROM appraisal_results WHERE run_id IN (
			SELECT id FROM appraisal_runs WHERE timestamp < ?
		)`, cutoff)
	if err != nil {
		log.Printf("[DB] CleanupOldRuns: results delete error: %v", err)
	} else if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[DB] CleanupOldRuns: removed %d old results", n)
	}

	res, err = d.sql.Exec("DELETE FROM appraisal_runs WHERE timestamp < ?", cutoff)
	if err != nil {
		log.Printf("[DB] CleanupOldRuns: runs delete error: %v", err)
	} else if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[DB] CleanupOldRuns: removed %d old runs", n)
	}
}
