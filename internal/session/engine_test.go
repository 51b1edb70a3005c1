package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platonusquiz/server/internal/domain"
)

func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{ID: "q1", Text: "2+2?", Variants: []string{"4", "3", "5"}, CorrectVariantIndex: 0},
			{ID: "q2", Text: "3*3?", Variants: []string{"9", "6", "12"}, CorrectVariantIndex: 0},
			{ID: "q3", Text: "10/2?", Variants: []string{"5", "2", "20"}, CorrectVariantIndex: 0},
		},
	}
}

func practiceConfig() Config {
	return Config{Mode: ModePractice}
}

func newTestEngine(t *testing.T, quiz domain.Quiz, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(quiz, "user-1", cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return e
}

func TestNewEngineRefusesEmptyQuiz(t *testing.T) {
	_, err := NewEngine(domain.Quiz{ID: "empty"}, "user-1", practiceConfig(), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, domain.ErrEmptyQuiz)
}

func TestIdentityOrderWithoutShuffle(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	v := e.View()
	assert.Equal(t, "q1", v.Question.ID)
	assert.Equal(t, []DisplayVariant{
		{Text: "4", OriginalIndex: 0},
		{Text: "3", OriginalIndex: 1},
		{Text: "5", OriginalIndex: 2},
	}, v.Question.Variants)
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	cfg := Config{Mode: ModeExam, RandomizeQuestions: true, RandomizeAnswers: true}

	collect := func(e *Engine) []string {
		var order []string
		for i := 0; i < 3; i++ {
			order = append(order, e.View().Question.ID)
			_, err := e.Advance(1)
			require.NoError(t, err)
		}
		return order
	}

	a, err := NewEngine(threeQuestionQuiz(), "user-1", cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := NewEngine(threeQuestionQuiz(), "user-1", cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, collect(a), collect(b))
}

func TestShuffledVariantsKeepOriginalIndices(t *testing.T) {
	cfg := Config{Mode: ModeExam, RandomizeAnswers: true}
	quiz := threeQuestionQuiz()
	e := newTestEngine(t, quiz, cfg)

	v := e.View()
	require.Len(t, v.Question.Variants, 3)
	seen := map[int]string{}
	for _, dv := range v.Question.Variants {
		seen[dv.OriginalIndex] = dv.Text
	}
	assert.Equal(t, map[int]string{0: "4", 1: "3", 2: "5"}, seen)
}

func TestSingleQuestionQuizUnaffectedByShuffle(t *testing.T) {
	quiz := domain.Quiz{
		ID: "single",
		Questions: []domain.Question{
			{ID: "q1", Text: "?", Variants: []string{"only", "other"}, CorrectVariantIndex: 0},
		},
	}

	plain := newTestEngine(t, quiz, practiceConfig())
	shuffledQ := newTestEngine(t, quiz, Config{Mode: ModePractice, RandomizeQuestions: true})

	assert.Equal(t, plain.View().Question.ID, shuffledQ.View().Question.ID)
	assert.Equal(t, plain.View().TotalQuestions, shuffledQ.View().TotalQuestions)
}

func TestPracticeModeLocksAnswer(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	require.NoError(t, e.RecordAnswer("q1", 1))
	assert.ErrorIs(t, e.RecordAnswer("q1", 0), domain.ErrAnswerLocked)

	// Locked means locked to the first choice.
	v := e.View()
	require.NotNil(t, v.Question.Answer)
	assert.Equal(t, 1, *v.Question.Answer)
}

func TestPracticeModeRevealsCorrectIndexOnceAnswered(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	assert.Nil(t, e.View().Question.CorrectIndex)
	require.NoError(t, e.RecordAnswer("q1", 1))

	v := e.View()
	require.NotNil(t, v.Question.CorrectIndex)
	assert.Equal(t, 0, *v.Question.CorrectIndex)
}

func TestExamModeAllowsChangingAnswer(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), Config{Mode: ModeExam})

	require.NoError(t, e.RecordAnswer("q1", 1))
	require.NoError(t, e.RecordAnswer("q1", 0))

	v := e.View()
	require.NotNil(t, v.Question.Answer)
	assert.Equal(t, 0, *v.Question.Answer)
	// Exam mode never reveals correctness before finalize.
	assert.Nil(t, v.Question.CorrectIndex)
}

func TestRecordAnswerValidation(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	assert.ErrorIs(t, e.RecordAnswer("nope", 0), domain.ErrQuestionNotFound)
	assert.ErrorIs(t, e.RecordAnswer("q1", -1), domain.ErrVariantOutOfRange)
	assert.ErrorIs(t, e.RecordAnswer("q1", 3), domain.ErrVariantOutOfRange)
}

func TestFiftyFiftyEliminatesTwoIncorrect(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	removed, err := e.UseFiftyFifty("q1")
	require.NoError(t, err)
	require.Len(t, removed, 2)
	for _, idx := range removed {
		assert.NotEqual(t, 0, idx, "correct variant must never be eliminated")
		assert.ErrorIs(t, e.RecordAnswer("q1", idx), domain.ErrVariantEliminated)
	}

	// Only the correct variant remains selectable.
	require.NoError(t, e.RecordAnswer("q1", 0))
}

func TestFiftyFiftyIsIdempotent(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	first, err := e.UseFiftyFifty("q2")
	require.NoError(t, err)
	second, err := e.UseFiftyFifty("q2")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFiftyFiftyWithSingleIncorrectVariant(t *testing.T) {
	quiz := domain.Quiz{
		ID: "tiny",
		Questions: []domain.Question{
			{ID: "q1", Text: "?", Variants: []string{"right", "wrong"}, CorrectVariantIndex: 0},
		},
	}
	e := newTestEngine(t, quiz, practiceConfig())

	removed, err := e.UseFiftyFifty("q1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, removed)
}

func TestAdvanceClamps(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	idx, err := e.Advance(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = e.Advance(1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = e.Advance(1)
	require.NoError(t, err)
	idx, err = e.Advance(1)
	require.NoError(t, err)
	assert.Equal(t, 2, idx, "cursor stays on the last question")
}

func TestFinalizeScoresPartialAnswers(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	require.NoError(t, e.RecordAnswer("q1", 0)) // correct
	require.NoError(t, e.RecordAnswer("q2", 2)) // incorrect
	// q3 left unanswered

	att, err := e.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 1, att.Score)
	assert.Equal(t, 3, att.TotalQuestions)
	assert.Equal(t, "quiz-1", att.QuizID)
	assert.Equal(t, "user-1", att.UserID)
	assert.Equal(t, map[string]int{"q1": 0, "q2": 2}, att.Answers)
	assert.NotEmpty(t, att.ID)
}

func TestFinalizeIsSingleShot(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), practiceConfig())

	_, err := e.Finalize()
	require.NoError(t, err)

	_, err = e.Finalize()
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
	assert.ErrorIs(t, e.RecordAnswer("q1", 0), domain.ErrSessionFinished)
	_, err = e.UseFiftyFifty("q1")
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
	_, err = e.Advance(1)
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
}

func TestExamTimerZeroMeansUnlimited(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), Config{Mode: ModeExam, TimerMinutes: 0})

	_, armed := e.Deadline()
	assert.False(t, armed)
	assert.False(t, e.View().TimerArmed)
}

func TestPracticeModeNeverArmsTimer(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), Config{Mode: ModePractice, TimerMinutes: 30})

	_, armed := e.Deadline()
	assert.False(t, armed)
}

func TestExamTimerArmed(t *testing.T) {
	e := newTestEngine(t, threeQuestionQuiz(), Config{Mode: ModeExam, TimerMinutes: 2})

	_, armed := e.Deadline()
	assert.True(t, armed)

	v := e.View()
	assert.True(t, v.TimerArmed)
	assert.InDelta(t, 120, v.TimeRemainingSeconds, 2)
}
