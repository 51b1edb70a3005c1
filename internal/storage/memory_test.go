package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platonusquiz/server/internal/domain"
)

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []domain.Quiz{{ID: "quiz-1", Title: "History"}}
	require.NoError(t, store.SaveQuizzes(ctx, original))

	// Mutating the caller's slice must not leak into the store.
	original[0].Title = "mutated"

	loaded, err := store.LoadQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "History", loaded[0].Title)

	// Mutating the loaded slice must not change subsequent loads either.
	loaded[0].Title = "also mutated"
	again, err := store.LoadQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "History", again[0].Title)
}
