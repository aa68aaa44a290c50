package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/facegate/facegate/internal/storage"
)

func (s *Store) ReplaceSession(ctx context.Context, sess storage.AccessSession) error {
	// Delete-then-insert in one transaction so the one-session-per-identity
	// invariant holds even under concurrent approvals for the same name.
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM access_sessions WHERE name = $1", sess.Name); err != nil {
		return fmt.Errorf("delete prior sessions: %w", err)
	}

	query := `
		INSERT INTO access_sessions (id, name, class, roll, code, started_at, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		sess.ID, sess.Name, sess.Class, sess.Roll, sess.Code, sess.StartedAt, sess.Confidence,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session replace: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*storage.AccessSession, error) {
	query := `
		SELECT id, name, class, roll, code, started_at, confidence
		FROM access_sessions
		WHERE id = $1
	`

	var sess storage.AccessSession
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&sess.ID, &sess.Name, &sess.Class, &sess.Roll,
		&sess.Code, &sess.StartedAt, &sess.Confidence,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM access_sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
