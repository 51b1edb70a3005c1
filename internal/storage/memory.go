package storage

import (
	"context"
	"sync"

	"github.com/platonusquiz/server/internal/domain"
)

// MemoryStore keeps both collections in process memory. Default backend
// for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	quizzes  []domain.Quiz
	attempts []domain.Attempt
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, len(s.quizzes))
	copy(out, s.quizzes)
	return out, nil
}

func (s *MemoryStore) SaveQuizzes(_ context.Context, quizzes []domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = make([]domain.Quiz, len(quizzes))
	copy(s.quizzes, quizzes)
	return nil
}

func (s *MemoryStore) LoadAttempts(_ context.Context) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out, nil
}

func (s *MemoryStore) SaveAttempts(_ context.Context, attempts []domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = make([]domain.Attempt, len(attempts))
	copy(s.attempts, attempts)
	return nil
}
