package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

// runStore implements driven.RunStore backed by SQLite.
type runStore struct {
	store *Store
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, status, flight_number, pickup_location, dropoff_location,
		       scheduled_at, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// List returns all runs, most recently scheduled first.
func (s *runStore) List(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, status, flight_number, pickup_location, dropoff_location,
		       scheduled_at, created_at, updated_at
		FROM runs ORDER BY scheduled_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListByStatus returns runs with the given status.
func (s *runStore) ListByStatus(ctx context.Context, status domain.RunStatus) ([]domain.Run, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, status, flight_number, pickup_location, dropoff_location,
		       scheduled_at, created_at, updated_at
		FROM runs WHERE status = ? ORDER BY scheduled_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying runs by status: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// Save creates or updates a run based on ID.
func (s *runStore) Save(ctx context.Context, run *domain.Run) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, flight_number, pickup_location,
		                  dropoff_location, scheduled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			flight_number = excluded.flight_number,
			pickup_location = excluded.pickup_location,
			dropoff_location = excluded.dropoff_location,
			scheduled_at = excluded.scheduled_at,
			updated_at = excluded.updated_at
	`,
		run.ID,
		string(run.Status),
		run.FlightNumber,
		run.PickupLocation,
		run.DropoffLocation,
		formatNullableTime(run.ScheduledAt),
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Delete removes a run.
func (s *runStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner abstracts over *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var run domain.Run
	var status string
	var scheduledAt sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&run.ID,
		&status,
		&run.FlightNumber,
		&run.PickupLocation,
		&run.DropoffLocation,
		&scheduledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	run.ScheduledAt = parseNullableTime(scheduledAt)
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &run, nil
}

func collectRuns(rows *sql.Rows) ([]domain.Run, error) {
	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// formatNullableTime converts a time to a nullable RFC3339 string.
// Zero times map to NULL.
func formatNullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// parseNullableTime converts a nullable RFC3339 string back to a time.
// NULL and unparseable values map to the zero time.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
