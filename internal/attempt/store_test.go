package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platonusquiz/server/internal/catalog"
	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/storage"
)

func newStore(t *testing.T) (*Store, *catalog.Service) {
	t.Helper()
	mem := storage.NewMemoryStore()
	cat, err := catalog.NewService(context.Background(), mem, zerolog.Nop())
	require.NoError(t, err)
	store, err := NewStore(context.Background(), mem, cat, zerolog.Nop())
	require.NoError(t, err)
	return store, cat
}

func addQuiz(t *testing.T, cat *catalog.Service, id string) {
	t.Helper()
	require.NoError(t, cat.AddQuiz(context.Background(), domain.Quiz{
		ID:    id,
		Title: "Quiz " + id,
		Questions: []domain.Question{
			{ID: id + "-q1", Text: "?", Variants: []string{"a", "b"}, CorrectVariantIndex: 0},
		},
	}))
}

func attemptFor(id, quizID, userID string, score int) domain.Attempt {
	return domain.Attempt{
		ID:             id,
		QuizID:         quizID,
		UserID:         userID,
		Score:          score,
		TotalQuestions: 3,
		Answers:        map[string]int{},
		Date:           time.Now(),
	}
}

func TestRecordIncrementsTimesSolvedInCallOrder(t *testing.T) {
	store, cat := newStore(t)
	ctx := context.Background()
	addQuiz(t, cat, "quiz-1")

	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 2)))
	require.NoError(t, store.Record(ctx, attemptFor("a2", "quiz-1", "user-2", 3)))

	quiz, err := cat.GetQuiz("quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 2, quiz.TimesSolved)

	attempts := store.QueryByQuiz("quiz-1")
	require.Len(t, attempts, 2)
	assert.Equal(t, "a1", attempts[0].ID)
	assert.Equal(t, "a2", attempts[1].ID)
}

func TestRecordSyntheticQuizSkipsStats(t *testing.T) {
	store, cat := newStore(t)
	ctx := context.Background()
	addQuiz(t, cat, "quiz-1")

	require.NoError(t, store.Record(ctx, attemptFor("a1", domain.FavoritesQuizID, "user-1", 1)))

	quiz, err := cat.GetQuiz("quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 0, quiz.TimesSolved)

	// The attempt itself is still recorded.
	assert.Len(t, store.QueryByQuiz(domain.FavoritesQuizID), 1)
}

func TestRecordOrphanedQuizKeepsHistory(t *testing.T) {
	store, cat := newStore(t)
	ctx := context.Background()
	addQuiz(t, cat, "quiz-1")
	require.NoError(t, cat.DeleteQuiz(ctx, "quiz-1"))

	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 1)))
	assert.Len(t, store.QueryByQuiz("quiz-1"), 1)
}

func TestQueryByUser(t *testing.T) {
	store, cat := newStore(t)
	ctx := context.Background()
	addQuiz(t, cat, "quiz-1")
	addQuiz(t, cat, "quiz-2")

	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 1)))
	require.NoError(t, store.Record(ctx, attemptFor("a2", "quiz-2", "user-1", 2)))
	require.NoError(t, store.Record(ctx, attemptFor("a3", "quiz-1", "user-2", 3)))

	mine := store.QueryByUser("user-1")
	require.Len(t, mine, 2)
	assert.Equal(t, "a1", mine[0].ID)
	assert.Equal(t, "a2", mine[1].ID)
}

func TestBestScore(t *testing.T) {
	store, cat := newStore(t)
	ctx := context.Background()
	addQuiz(t, cat, "quiz-1")

	_, found := store.BestScore("quiz-1", "user-1")
	assert.False(t, found)

	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 0)))

	best, found := store.BestScore("quiz-1", "user-1")
	assert.True(t, found)
	assert.Equal(t, 0, best)

	require.NoError(t, store.Record(ctx, attemptFor("a2", "quiz-1", "user-1", 2)))
	require.NoError(t, store.Record(ctx, attemptFor("a3", "quiz-1", "user-1", 1)))

	best, found = store.BestScore("quiz-1", "user-1")
	assert.True(t, found)
	assert.Equal(t, 2, best)
}

func TestAttemptLogSurvivesReload(t *testing.T) {
	mem := storage.NewMemoryStore()
	ctx := context.Background()
	cat, err := catalog.NewService(ctx, mem, zerolog.Nop())
	require.NoError(t, err)
	store, err := NewStore(ctx, mem, cat, zerolog.Nop())
	require.NoError(t, err)

	addQuiz(t, cat, "quiz-1")
	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 2)))

	reloaded, err := NewStore(ctx, mem, cat, zerolog.Nop())
	require.NoError(t, err)

	att, err := reloaded.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, 2, att.Score)
}

// brokenSaves refuses attempt saves for a number of calls, standing in
// for a storage backend outage.
type brokenSaves struct {
	storage.Store
	failures int
}

func (b *brokenSaves) SaveAttempts(ctx context.Context, attempts []domain.Attempt) error {
	if b.failures > 0 {
		b.failures--
		return assert.AnError
	}
	return b.Store.SaveAttempts(ctx, attempts)
}

func TestRecordFailedSaveLeavesStoreUntouched(t *testing.T) {
	mem := storage.NewMemoryStore()
	ctx := context.Background()
	cat, err := catalog.NewService(ctx, mem, zerolog.Nop())
	require.NoError(t, err)
	broken := &brokenSaves{Store: mem, failures: 1}
	store, err := NewStore(ctx, broken, cat, zerolog.Nop())
	require.NoError(t, err)

	addQuiz(t, cat, "quiz-1")
	require.Error(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 1)))

	// Nothing half-applied: no attempt in the log, no counter movement.
	_, err = store.Get("a1")
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
	assert.Empty(t, store.QueryByUser("user-1"))
	quiz, err := cat.GetQuiz("quiz-1")
	require.NoError(t, err)
	assert.Zero(t, quiz.TimesSolved)

	// The same attempt records cleanly once the backend recovers.
	require.NoError(t, store.Record(ctx, attemptFor("a1", "quiz-1", "user-1", 1)))
	att, err := store.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, 1, att.Score)
	quiz, err = cat.GetQuiz("quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 1, quiz.TimesSolved)
}
