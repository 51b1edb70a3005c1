package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/platonusquiz/server/internal/domain"
)

const (
	quizzesKey  = "platonus:quizzes"
	attemptsKey = "platonus:attempts"
)

// RedisStore persists each collection as one JSON value. A replace is a
// single SET, which keeps the whole-collection semantics atomic per key.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := s.load(ctx, quizzesKey, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *RedisStore) SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error {
	return s.save(ctx, quizzesKey, quizzes)
}

func (s *RedisStore) LoadAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	if err := s.load(ctx, attemptsKey, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *RedisStore) SaveAttempts(ctx context.Context, attempts []domain.Attempt) error {
	return s.save(ctx, attemptsKey, attempts)
}

func (s *RedisStore) load(ctx context.Context, key string, dst any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
