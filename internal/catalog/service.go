// Package catalog owns the set of quizzes: lookup, creation, deletion,
// and the derived favorites quiz.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/storage"
)

// Service is the process-wide quiz catalog. Reads are concurrent,
// mutations exclusive; every mutation persists the whole collection.
type Service struct {
	mu        sync.RWMutex
	store     storage.Store
	logger    zerolog.Logger
	quizzes   []domain.Quiz
	favorites *domain.Quiz // derived view, never persisted
}

// NewService loads the persisted quiz collection and builds the catalog.
func NewService(ctx context.Context, store storage.Store, logger zerolog.Logger) (*Service, error) {
	quizzes, err := store.LoadQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	return &Service{
		store:   store,
		logger:  logger.With().Str("component", "catalog").Logger(),
		quizzes: quizzes,
	}, nil
}

// AddQuiz appends a caller-built quiz. Ids are assumed globally unique
// by construction; a duplicate is a precondition violation, logged and
// resolved by replacement so lookups cannot silently shadow.
func (s *Service) AddQuiz(ctx context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.quizzes {
		if s.quizzes[i].ID == quiz.ID {
			s.logger.Error().Str("quiz_id", quiz.ID).Msg("duplicate quiz id, replacing")
			s.quizzes[i] = quiz
			return s.saveLocked(ctx)
		}
	}

	s.quizzes = append(s.quizzes, quiz)
	s.logger.Info().Str("quiz_id", quiz.ID).Int("questions", len(quiz.Questions)).Msg("quiz added")
	return s.saveLocked(ctx)
}

// DeleteQuiz removes a quiz by id. Attempts referencing it stay in the
// log as orphaned history.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			s.quizzes = append(s.quizzes[:i], s.quizzes[i+1:]...)
			s.logger.Info().Str("quiz_id", id).Msg("quiz deleted")
			return s.saveLocked(ctx)
		}
	}
	return domain.ErrQuizNotFound
}

// GetQuiz returns a quiz by id, including the current favorites quiz
// under its reserved id.
func (s *Service) GetQuiz(id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.favorites != nil && s.favorites.ID == id {
		return *s.favorites, nil
	}
	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			return s.quizzes[i], nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// ListQuizzes returns the persisted quizzes in insertion order. The
// derived favorites quiz is excluded.
func (s *Service) ListQuizzes() []domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quiz, len(s.quizzes))
	copy(out, s.quizzes)
	return out
}

// CreateFavoritesQuiz materializes the synthetic quiz from the user's
// favorite question ids. Questions are collected from real quizzes in
// insertion order, deduplicated by id (first occurrence wins). The new
// quiz replaces any previous favorites quiz; re-derivation is
// idempotent. Returns ErrQuizNotFound when no favorited question exists
// anymore, e.g. after the parent quizzes were deleted.
func (s *Service) CreateFavoritesQuiz(favoriteIDs []string) (domain.Quiz, error) {
	wanted := make(map[string]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		wanted[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(wanted))
	var questions []domain.Question
	for _, quiz := range s.quizzes {
		for _, q := range quiz.Questions {
			if _, ok := wanted[q.ID]; !ok {
				continue
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		s.favorites = nil
		return domain.Quiz{}, domain.ErrQuizNotFound
	}

	fav := domain.Quiz{
		ID:        domain.FavoritesQuizID,
		Title:     "Favorite Questions",
		Questions: questions,
		CreatedAt: time.Now(),
		Synthetic: true,
	}
	s.favorites = &fav
	return fav, nil
}

// MarkSolved increments a quiz's solve counter. Synthetic and absent
// quizzes are a no-op so the derived favorites quiz and orphaned
// attempts can never corrupt real stats.
func (s *Service) MarkSolved(ctx context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.quizzes {
		if s.quizzes[i].ID == quizID {
			s.quizzes[i].TimesSolved++
			return s.saveLocked(ctx)
		}
	}
	return nil
}

func (s *Service) saveLocked(ctx context.Context) error {
	if err := s.store.SaveQuizzes(ctx, s.quizzes); err != nil {
		return fmt.Errorf("save quizzes: %w", err)
	}
	return nil
}
