// Package audit persists the AI call trail: one append-only row per served
// operation, written by a recorder goroutine that consumes events from the
// in-memory bus. No updates or deletes are supported.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/econpulse/econpulse/pkg/uuid"
)

// Service provides append-only audit logging over ai_call_event.
type Service struct {
	db *sql.DB
}

// NewService creates an audit service on an already-migrated database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Log inserts one call record. This is the only write path; there are no
// update or delete operations.
func (s *Service) Log(ctx context.Context, rec *CallRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewV7().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_call_event (id, operation, provider_id, fallback, duration_ms, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Operation, rec.ProviderID, boolToInt(rec.Fallback),
		rec.DurationMS, string(rec.Outcome), rec.Error, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: insert call record: %w", err)
	}
	return nil
}

// GetByID retrieves a single record by id.
func (s *Service) GetByID(ctx context.Context, id string) (*CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, operation, provider_id, fallback, duration_ms, outcome, error, created_at
		FROM ai_call_event WHERE id = ?`, id)
	return scanRecord(row)
}

// ListRecent returns records ordered newest first, with the total row count
// for pagination.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*CallRecord, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, provider_id, fallback, duration_ms, outcome, error, created_at
		FROM ai_call_event
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("audit: list records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []*CallRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("audit: iterate records: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_call_event").Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("audit: count records: %w", err)
	}

	return records, count, nil
}

// ListByProvider returns the newest records served by one provider.
func (s *Service) ListByProvider(ctx context.Context, providerID string, limit int) ([]*CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, provider_id, fallback, duration_ms, outcome, error, created_at
		FROM ai_call_event
		WHERE provider_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list by provider: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []*CallRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountFallbacks returns how many recorded calls were served by the baseline
// after a bypass.
func (s *Service) CountFallbacks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_call_event WHERE fallback = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count fallbacks: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*CallRecord, error) {
	var (
		rec       CallRecord
		fallback  int
		outcome   string
		createdAt string
	)
	if err := s.Scan(&rec.ID, &rec.Operation, &rec.ProviderID, &fallback,
		&rec.DurationMS, &outcome, &rec.Error, &createdAt); err != nil {
		return nil, fmt.Errorf("audit: scan record: %w", err)
	}

	rec.Fallback = fallback != 0
	rec.Outcome = Outcome(outcome)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
