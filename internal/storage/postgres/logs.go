package postgres

import (
	"context"
	"fmt"

	"github.com/facegate/facegate/internal/storage"
)

func (s *Store) AppendLog(ctx context.Context, e storage.LogEntry) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO audit_log (created_at, action, formatted) VALUES ($1, $2, $3)",
		e.Timestamp, e.Action, e.Formatted,
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}

	// Evict oldest entries beyond the retention bound.
	prune := `
		DELETE FROM audit_log
		WHERE id IN (
			SELECT id FROM audit_log
			ORDER BY created_at DESC, id DESC
			OFFSET $1
		)
	`
	if _, err := s.pool.Exec(ctx, prune, s.logRetention); err != nil {
		return fmt.Errorf("prune log entries: %w", err)
	}
	return nil
}

func (s *Store) RecentLogs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT formatted FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var formatted string
		if err := rows.Scan(&formatted); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		out = append(out, formatted)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return out, nil
}
