package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platonusquiz/server/internal/domain"
)

const (
	collectionQuizzes  = "quizzes"
	collectionAttempts = "attempts"
)

// PostgresStore keeps one JSONB row per collection in the collections
// table (see db/migrations). An upsert replaces the whole collection in
// one statement, matching the read/replace contract.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := s.load(ctx, collectionQuizzes, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *PostgresStore) SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error {
	return s.save(ctx, collectionQuizzes, quizzes)
}

func (s *PostgresStore) LoadAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	if err := s.load(ctx, collectionAttempts, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *PostgresStore) SaveAttempts(ctx context.Context, attempts []domain.Attempt) error {
	return s.save(ctx, collectionAttempts, attempts)
}

func (s *PostgresStore) load(ctx context.Context, name string, dst any) error {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM collections WHERE name = $1`, name,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load collection %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("unmarshal collection %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, name string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO collections (name, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		name, payload,
	)
	if err != nil {
		return fmt.Errorf("save collection %s: %w", name, err)
	}
	return nil
}
