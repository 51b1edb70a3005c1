// Package attempt records finalized quiz attempts and derives per-quiz
// and per-user aggregates.
package attempt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/catalog"
	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/storage"
)

// Store is the append-only attempt log. Recording an attempt and
// bumping the quiz's solve counter happen under one lock, so the
// counter cannot drift from the log within this process.
type Store struct {
	mu       sync.RWMutex
	store    storage.Store
	catalog  *catalog.Service
	logger   zerolog.Logger
	attempts []domain.Attempt
}

// NewStore loads the persisted attempt log.
func NewStore(ctx context.Context, store storage.Store, cat *catalog.Service, logger zerolog.Logger) (*Store, error) {
	attempts, err := store.LoadAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	return &Store{
		store:    store,
		catalog:  cat,
		logger:   logger.With().Str("component", "attempt_store").Logger(),
		attempts: attempts,
	}, nil
}

// Record appends an attempt and increments the quiz's TimesSolved,
// except for the synthetic favorites quiz which stays out of real quiz
// stats. The attempt is persisted before it enters the in-memory log;
// a failed save leaves the store untouched so the caller can retry
// without duplicating anything. The counter bump after a persisted
// attempt is best-effort: a failed bump is logged, not returned, since
// returning it would make a retry re-record the attempt.
func (s *Store) Record(ctx context.Context, att domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, att)
	if err := s.store.SaveAttempts(ctx, s.attempts); err != nil {
		s.attempts = s.attempts[:len(s.attempts)-1]
		return fmt.Errorf("save attempts: %w", err)
	}

	if att.QuizID != domain.FavoritesQuizID {
		if err := s.catalog.MarkSolved(ctx, att.QuizID); err != nil {
			s.logger.Error().Err(err).
				Str("attempt_id", att.ID).
				Str("quiz_id", att.QuizID).
				Msg("attempt recorded but solve counter not bumped")
		}
	}

	s.logger.Info().
		Str("attempt_id", att.ID).
		Str("quiz_id", att.QuizID).
		Str("user_id", att.UserID).
		Int("score", att.Score).
		Int("total", att.TotalQuestions).
		Msg("attempt recorded")
	return nil
}

// Get returns one attempt by id.
func (s *Store) Get(id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, att := range s.attempts {
		if att.ID == id {
			return att, nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

// QueryByUser returns the user's attempts in insertion order.
func (s *Store) QueryByUser(userID string) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Attempt
	for _, att := range s.attempts {
		if att.UserID == userID {
			out = append(out, att)
		}
	}
	return out
}

// QueryByQuiz returns a quiz's attempts in insertion order, including
// rows for quizzes that were deleted afterwards.
func (s *Store) QueryByQuiz(quizID string) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Attempt
	for _, att := range s.attempts {
		if att.QuizID == quizID {
			out = append(out, att)
		}
	}
	return out
}

// BestScore returns the user's best score on a quiz. The second return
// distinguishes "never attempted" from a legitimate score of 0.
func (s *Store) BestScore(quizID, userID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, found := 0, false
	for _, att := range s.attempts {
		if att.QuizID != quizID || att.UserID != userID {
			continue
		}
		if !found || att.Score > best {
			best = att.Score
		}
		found = true
	}
	return best, found
}
