package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/facegate/facegate/internal/storage"
)

func (s *Store) InsertIdentity(ctx context.Context, id storage.Identity) error {
	query := `
		INSERT INTO identities (name, name_key, embedding, preview, class, roll, code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		id.Name, id.NameKey, pgvector.NewVector(id.Embedding),
		id.Preview, id.Class, id.Roll, id.Code, id.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, name string) (*storage.Identity, error) {
	query := `
		SELECT name, name_key, embedding, preview, class, roll, code, created_at
		FROM identities
		WHERE name = $1
	`

	var id storage.Identity
	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, query, name).Scan(
		&id.Name, &id.NameKey, &vec, &id.Preview,
		&id.Class, &id.Roll, &id.Code, &id.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	id.Embedding = vec.Slice()
	return &id, nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]storage.Identity, error) {
	query := `
		SELECT name, name_key, embedding, preview, class, roll, code, created_at
		FROM identities
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var out []storage.Identity
	for rows.Next() {
		var id storage.Identity
		var vec pgvector.Vector
		if err := rows.Scan(
			&id.Name, &id.NameKey, &vec, &id.Preview,
			&id.Class, &id.Roll, &id.Code, &id.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id.Embedding = vec.Slice()
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateIdentity(ctx context.Context, oldName, name, nameKey, class, roll string) error {
	query := `
		UPDATE identities
		SET name = $2, name_key = $3, class = $4, roll = $5
		WHERE name = $1
	`

	result, err := s.pool.Exec(ctx, query, oldName, name, nameKey, class, roll)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
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

func (s *Store) DeleteIdentity(ctx context.Context, name string) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM identities WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
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
