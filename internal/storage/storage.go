// Package storage implements the persistence collaborator for quizzes and
// attempts. The contract is whole-collection read/replace: every mutating
// catalog or attempt operation saves the full collection it owns.
package storage

import (
	"context"

	"github.com/platonusquiz/server/internal/domain"
)

// Store persists the quiz and attempt collections as opaque wholes.
// There are no partial updates; callers own intra-collection consistency.
type Store interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
	SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error
	LoadAttempts(ctx context.Context) ([]domain.Attempt, error)
	SaveAttempts(ctx context.Context, attempts []domain.Attempt) error
}
