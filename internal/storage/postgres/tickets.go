package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/facegate/facegate/internal/storage"
)

func (s *Store) UpsertTicket(ctx context.Context, t storage.CaptureTicket) error {
	query := `
		INSERT INTO capture_tickets (token, preview, embedding, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET
			preview = EXCLUDED.preview,
			embedding = EXCLUDED.embedding,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.pool.Exec(ctx, query,
		t.Token, t.Preview, pgvector.NewVector(t.Embedding), t.CreatedAt, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert ticket: %w", err)
	}
	return nil
}

func (s *Store) GetTicket(ctx context.Context, token string) (*storage.CaptureTicket, error) {
	// Expired rows are invisible even before the sweep removes them.
	query := `
		SELECT token, preview, embedding, created_at, expires_at
		FROM capture_tickets
		WHERE token = $1 AND expires_at > NOW()
	`

	var t storage.CaptureTicket
	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&t.Token, &t.Preview, &vec, &t.CreatedAt, &t.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}

	t.Embedding = vec.Slice()
	return &t, nil
}

func (s *Store) DeleteTicket(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM capture_tickets WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

func (s *Store) PruneExpiredTickets(ctx context.Context) (int64, error) {
	result, err := s.pool.Exec(ctx, "DELETE FROM capture_tickets WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("prune expired tickets: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return count, nil
}
