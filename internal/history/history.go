// Package history persists processed batches so earlier runs can be listed
// and re-exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rotaviva/stops-cli/internal/model"
)

// Job is one processed batch and its per-status tallies.
type Job struct {
	ID        string               `json:"id"`
	InputFile string               `json:"input_file"`
	RowCount  int                  `json:"row_count"`
	Counts    map[model.Status]int `json:"counts"`
	Results   []model.ResolvedStop `json:"results,omitempty"`
	Duration  time.Duration        `json:"duration"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store keeps job history in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database and runs the migration.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "history: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "history: exec %s", pragma)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	input_file  TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	counts      TEXT NOT NULL,
	results     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
`

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "history: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveJob records a finished batch and returns it with id and timestamp set.
func (s *Store) SaveJob(ctx context.Context, inputFile string, results []model.ResolvedStop, duration time.Duration) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		InputFile: inputFile,
		RowCount:  len(results),
		Counts:    countStatuses(results),
		Results:   results,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}

	countsJSON, err := json.Marshal(job.Counts)
	if err != nil {
		return nil, eris.Wrap(err, "history: marshal counts")
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, eris.Wrap(err, "history: marshal results")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, input_file, row_count, counts, results, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.InputFile, job.RowCount, string(countsJSON), string(resultsJSON),
		job.Duration.Milliseconds(), job.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "history: insert job")
	}
	return job, nil
}

// ListJobs returns recent jobs, newest first, without their result arrays.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_file, row_count, counts, duration_ms, created_at
		 FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "history: list jobs")
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var countsJSON string
		var durationMs int64
		if err := rows.Scan(&j.ID, &j.InputFile, &j.RowCount, &countsJSON, &durationMs, &j.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "history: scan job")
		}
		if err := json.Unmarshal([]byte(countsJSON), &j.Counts); err != nil {
			return nil, eris.Wrap(err, "history: unmarshal counts")
		}
		j.Duration = time.Duration(durationMs) * time.Millisecond
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "history: list jobs iterate")
}

// GetJob returns one job including its full result set, or nil when the id
// is unknown.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_file, row_count, counts, results, duration_ms, created_at
		 FROM jobs WHERE id = ?`, id)

	var j Job
	var countsJSON, resultsJSON string
	var durationMs int64
	err := row.Scan(&j.ID, &j.InputFile, &j.RowCount, &countsJSON, &resultsJSON, &durationMs, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "history: get job")
	}

	if err := json.Unmarshal([]byte(countsJSON), &j.Counts); err != nil {
		return nil, eris.Wrap(err, "history: unmarshal counts")
	}
	if err := json.Unmarshal([]byte(resultsJSON), &j.Results); err != nil {
		return nil, eris.Wrap(err, "history: unmarshal results")
	}
	j.Duration = time.Duration(durationMs) * time.Millisecond
	return &j, nil
}

func countStatuses(results []model.ResolvedStop) map[model.Status]int {
	counts := make(map[model.Status]int, 4)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
