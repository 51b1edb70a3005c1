package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platonusquiz/server/internal/domain"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreRoundTripQuizzes(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	quizzes := []domain.Quiz{
		{
			ID:    "quiz-1",
			Title: "Math Basics",
			Questions: []domain.Question{
				{ID: "q1", Text: "2+2?", Variants: []string{"4", "3", "5"}, CorrectVariantIndex: 0},
			},
			CreatedBy:   "user-1",
			CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			TimesSolved: 7,
		},
	}

	require.NoError(t, store.SaveQuizzes(ctx, quizzes))

	loaded, err := store.LoadQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, quizzes, loaded)
}

func TestRedisStoreEmptyLoad(t *testing.T) {
	store := newRedisStore(t)

	quizzes, err := store.LoadQuizzes(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, quizzes)

	attempts, err := store.LoadAttempts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestRedisStoreReplacesWholeCollection(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAttempts(ctx, []domain.Attempt{
		{ID: "a1", QuizID: "quiz-1", UserID: "user-1", Score: 2, TotalQuestions: 3},
		{ID: "a2", QuizID: "quiz-1", UserID: "user-2", Score: 1, TotalQuestions: 3},
	}))
	require.NoError(t, store.SaveAttempts(ctx, []domain.Attempt{
		{ID: "a3", QuizID: "quiz-2", UserID: "user-1", Score: 3, TotalQuestions: 3},
	}))

	attempts, err := store.LoadAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "a3", attempts[0].ID)
}
