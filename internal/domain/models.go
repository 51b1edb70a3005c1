package domain

import "time"

// FavoritesQuizID is the reserved id of the derived favorites quiz. The
// synthetic quiz is re-materialized on demand and never persisted; the
// Synthetic flag, not this id, drives stats bookkeeping.
const FavoritesQuizID = "favorites-quiz"

// Question is one multiple-choice question. The first authored (or first
// AI-returned) variant is the correct one by input-format convention, so
// CorrectVariantIndex is 0 for every freshly parsed question.
type Question struct {
	ID                  string   `json:"id"`
	Text                string   `json:"text"`
	Variants            []string `json:"variants"`
	CorrectVariantIndex int      `json:"correctVariantIndex"`
}

// Valid reports whether the question satisfies its structural invariant.
func (q Question) Valid() bool {
	return len(q.Variants) > 0 &&
		q.CorrectVariantIndex >= 0 &&
		q.CorrectVariantIndex < len(q.Variants)
}

// Quiz is an ordered collection of questions. Questions keep insertion
// order, which is the default display order for sessions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	TimesSolved int        `json:"timesSolved"`
	Synthetic   bool       `json:"synthetic,omitempty"`
}

// Attempt is the immutable record produced when a session finalizes.
// Answers maps question id to the chosen variant's original index.
type Attempt struct {
	ID             string         `json:"id"`
	QuizID         string         `json:"quizId"`
	UserID         string         `json:"userId"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        map[string]int `json:"answers"`
	Date           time.Time      `json:"date"`
}
