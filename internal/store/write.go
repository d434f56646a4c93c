package store

import (
	"context"
	"fmt"
	"time"
)

// Run is one Runner's history row.
type Run struct {
	ID           string
	StartedAt    time.Time
	UpdatedAt    time.Time
	SuccessCount int
	FailureCount int
	Reports      int
}

// Total returns the number of tests the run logged.
func (r Run) Total() int {
	return r.SuccessCount + r.FailureCount
}

// WriteReport records a Runner report at time at.
//
// The first report for a run ID inserts the row with started_at = at; later
// reports replace the counts (Runner totals only grow), bump updated_at and
// increment reports. started_at is never changed.
func (s *Store) WriteReport(ctx context.Context, runID string, successCount, failureCount int, at time.Time) error {
	if runID == "" {
		return fmt.Errorf("write report: run id is required")
	}
	ms := at.UnixMilli()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, updated_at, success_count, failure_count, reports)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			updated_at    = excluded.updated_at,
			success_count = excluded.success_count,
			failure_count = excluded.failure_count,
			reports       = runs.reports + 1
	`, runID, ms, ms, successCount, failureCount)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// DeleteRunsBefore removes runs started before cutoff and returns how many
// were removed.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return n, nil
}
