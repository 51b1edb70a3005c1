// Package session drives one quiz attempt: question ordering, answer
// capture, the 50/50 aid, the exam countdown, and finalization into a
// scored attempt.
package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platonusquiz/server/internal/domain"
)

// Engine is the state machine for a single attempt. All methods are
// serialized on one mutex, which also linearizes the timer-expiry path
// against user calls. An engine is single-use: once finalized it only
// reports ErrSessionFinished.
type Engine struct {
	mu sync.Mutex

	id     string
	quiz   domain.Quiz
	userID string
	cfg    Config

	questions []domain.Question           // display order
	variants  map[string][]DisplayVariant // question id -> display-order variants
	byID      map[string]domain.Question

	current    int
	answers    map[string]int
	eliminated map[string][]int // question id -> eliminated original indices; presence = 50/50 used

	deadline time.Time // zero when no countdown is armed
	finished bool

	rnd *rand.Rand
}

// NewEngine initializes a session over an immutable quiz snapshot. The
// random source is injected so tests can fix permutations. Starting on
// a quiz with no questions is refused; the engine never holds an
// undefined index.
func NewEngine(quiz domain.Quiz, userID string, cfg Config, rnd *rand.Rand) (*Engine, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}

	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	if cfg.RandomizeQuestions {
		shuffled := make([]domain.Question, len(questions))
		for i, j := range rnd.Perm(len(questions)) {
			shuffled[i] = questions[j]
		}
		questions = shuffled
	}

	variants := make(map[string][]DisplayVariant, len(questions))
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
		dv := make([]DisplayVariant, len(q.Variants))
		order := identityOrder(len(q.Variants))
		if cfg.RandomizeAnswers {
			order = rnd.Perm(len(q.Variants))
		}
		for pos, orig := range order {
			dv[pos] = DisplayVariant{Text: q.Variants[orig], OriginalIndex: orig}
		}
		variants[q.ID] = dv
	}

	e := &Engine{
		id:         uuid.NewString(),
		quiz:       quiz,
		userID:     userID,
		cfg:        cfg,
		questions:  questions,
		variants:   variants,
		byID:       byID,
		answers:    make(map[string]int),
		eliminated: make(map[string][]int),
		rnd:        rnd,
	}

	if cfg.Mode == ModeExam && cfg.TimerMinutes > 0 {
		e.deadline = time.Now().Add(time.Duration(cfg.TimerMinutes) * time.Minute)
	}
	return e, nil
}

// ID returns the session id.
func (e *Engine) ID() string { return e.id }

// UserID returns the attempt owner.
func (e *Engine) UserID() string { return e.userID }

// Deadline returns the countdown deadline and whether one is armed.
func (e *Engine) Deadline() (time.Time, bool) {
	return e.deadline, !e.deadline.IsZero()
}

// RecordAnswer stores the chosen variant's original index for a
// question. Practice mode locks a question once answered; exam mode
// allows overwriting until finalize. Variants hidden by 50/50 are not
// selectable.
func (e *Engine) RecordAnswer(questionID string, originalIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return domain.ErrSessionFinished
	}
	q, ok := e.byID[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if originalIndex < 0 || originalIndex >= len(q.Variants) {
		return domain.ErrVariantOutOfRange
	}
	for _, idx := range e.eliminated[questionID] {
		if idx == originalIndex {
			return domain.ErrVariantEliminated
		}
	}
	if _, answered := e.answers[questionID]; answered && e.cfg.Mode != ModeExam {
		return domain.ErrAnswerLocked
	}

	e.answers[questionID] = originalIndex
	return nil
}

// UseFiftyFifty hides up to two incorrect variants of a question. The
// aid is one-shot per question: a repeated call is a no-op returning the
// same eliminated set. Eliminated variants keep their display position.
func (e *Engine) UseFiftyFifty(questionID string) ([]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return nil, domain.ErrSessionFinished
	}
	q, ok := e.byID[questionID]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	if used, ok := e.eliminated[questionID]; ok {
		return append([]int(nil), used...), nil
	}

	var incorrect []int
	for i := range q.Variants {
		if i != q.CorrectVariantIndex {
			incorrect = append(incorrect, i)
		}
	}

	removed := make([]int, 0, 2)
	for _, pick := range e.rnd.Perm(len(incorrect)) {
		if len(removed) == 2 {
			break
		}
		removed = append(removed, incorrect[pick])
	}
	e.eliminated[questionID] = removed
	return append([]int(nil), removed...), nil
}

// Advance moves the cursor by delta, clamped to the question range.
// Answering the current question is not required. Returns the new index.
func (e *Engine) Advance(delta int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return e.current, domain.ErrSessionFinished
	}
	e.current += delta
	if e.current < 0 {
		e.current = 0
	}
	if e.current > len(e.questions)-1 {
		e.current = len(e.questions) - 1
	}
	return e.current, nil
}

// Finalize scores the session and produces the immutable attempt.
// Unanswered questions count as incorrect. The engine transitions to
// Finished; a second finalize reports ErrSessionFinished.
func (e *Engine) Finalize() (domain.Attempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return domain.Attempt{}, domain.ErrSessionFinished
	}
	e.finished = true

	score := 0
	for _, q := range e.questions {
		if idx, ok := e.answers[q.ID]; ok && idx == q.CorrectVariantIndex {
			score++
		}
	}

	answers := make(map[string]int, len(e.answers))
	for id, idx := range e.answers {
		answers[id] = idx
	}

	return domain.Attempt{
		ID:             uuid.NewString(),
		QuizID:         e.quiz.ID,
		UserID:         e.userID,
		Score:          score,
		TotalQuestions: len(e.questions),
		Answers:        answers,
		Date:           time.Now(),
	}, nil
}

// View snapshots the session for transport, focused on the current
// question. In practice mode the correct index is revealed once the
// question is answered, which is what "immediate feedback" means on the
// wire.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.questions[e.current]
	qv := QuestionView{
		ID:       q.ID,
		Text:     q.Text,
		Variants: e.variants[q.ID],
	}
	if idx, ok := e.answers[q.ID]; ok {
		chosen := idx
		qv.Answer = &chosen
		if e.cfg.Mode == ModePractice {
			correct := q.CorrectVariantIndex
			qv.CorrectIndex = &correct
		}
	}
	if removed, ok := e.eliminated[q.ID]; ok {
		qv.FiftyFiftyUsed = true
		qv.Eliminated = append([]int(nil), removed...)
	}

	v := View{
		SessionID:      e.id,
		QuizID:         e.quiz.ID,
		QuizTitle:      e.quiz.Title,
		Mode:           e.cfg.Mode,
		CurrentIndex:   e.current,
		TotalQuestions: len(e.questions),
		Answered:       len(e.answers),
		Finished:       e.finished,
		Question:       qv,
	}
	if !e.deadline.IsZero() {
		v.TimerArmed = true
		if remaining := time.Until(e.deadline); remaining > 0 {
			v.TimeRemainingSeconds = int(remaining.Seconds())
		}
	}
	return v
}

func identityOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
