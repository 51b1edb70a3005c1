package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates a quiz id that is not in the catalog.
	// Missing-after-delete is an expected steady-state condition.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates an attempt id with no recorded row.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrEmptyQuiz is returned when a session is started on a quiz with
	// no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrSessionNotFound indicates an unknown or already discarded session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinished rejects operations on a finalized session.
	ErrSessionFinished = errors.New("session already finished")
	// ErrAnswerLocked rejects re-answering a question in practice mode.
	ErrAnswerLocked = errors.New("answer locked")
	// ErrQuestionNotFound indicates a question id outside the session's quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrVariantOutOfRange rejects an answer index outside the variant list.
	ErrVariantOutOfRange = errors.New("variant index out of range")
	// ErrVariantEliminated rejects selecting a variant hidden by 50/50.
	ErrVariantEliminated = errors.New("variant eliminated by fifty-fifty")
)

// ParseError reports malformed authored input. The whole upload fails
// with zero questions committed, so retrying with a fixed file is safe.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse quiz input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse quiz input: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
