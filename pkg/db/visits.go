package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Visit represents one bills page load.
type Visit struct {
	ID           int64
	Email        string
	UserType     string
	Path         string
	Outcome      string
	RowCount     int
	FormatErrors int
	ErrorMessage string
	VisitedAt    time.Time
}

// VisitLog manages visit history operations.
type VisitLog struct {
	conn *Connection
}

// NewVisitLog creates a new VisitLog instance.
func NewVisitLog(conn *Connection) *VisitLog {
	return &VisitLog{conn: conn}
}

// Record appends a visit.
func (v *VisitLog) Record(ctx context.Context, visit Visit) error {
	query := `
		INSERT INTO page_visits (email, user_type, path, outcome, row_count, format_errors, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := v.conn.ExecContext(ctx, query,
		visit.Email,
		visit.UserType,
		visit.Path,
		visit.Outcome,
		visit.RowCount,
		visit.FormatErrors,
		visit.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	return nil
}

// Recent returns the latest visits, newest first.
func (v *VisitLog) Recent(ctx context.Context, limit int) ([]Visit, error) {
	query := `
		SELECT id, email, user_type, path, outcome, row_count, format_errors, error_message, visited_at
		FROM page_visits
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := v.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var visit Visit
		if err := rows.Scan(
			&visit.ID,
			&visit.Email,
			&visit.UserType,
			&visit.Path,
			&visit.Outcome,
			&visit.RowCount,
			&visit.FormatErrors,
			&visit.ErrorMessage,
			&visit.VisitedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}

	return visits, rows.Err()
}

// Stats represents visit statistics.
type Stats struct {
	TotalVisits  int
	Loaded       int
	FetchFailed  int
	FormatErrors int
	LastVisit    sql.NullString
}

// GetStats retrieves visit statistics.
func (v *VisitLog) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	err := v.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'loaded' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'fetch_failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(format_errors), 0)
		FROM page_visits
	`).Scan(&stats.TotalVisits, &stats.Loaded, &stats.FetchFailed, &stats.FormatErrors)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit counts: %w", err)
	}

	err = v.conn.QueryRowContext(ctx, `SELECT MAX(visited_at) FROM page_visits`).Scan(&stats.LastVisit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last visit time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value. Missing keys yield "".
func (v *VisitLog) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := v.conn.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (v *VisitLog) SetMetadata(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := v.conn.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
