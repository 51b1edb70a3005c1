package session

// Mode selects the feedback and answer-locking rules for a session.
type Mode string

const (
	// ModePractice gives immediate feedback and locks each answer once given.
	ModePractice Mode = "practice"
	// ModeExam defers feedback to finalize, allows changing answers, and
	// supports an optional countdown timer.
	ModeExam Mode = "exam"
)

// Config is the immutable setup handed to a session at start.
type Config struct {
	RandomizeQuestions bool `json:"randomizeQuestions"`
	RandomizeAnswers   bool `json:"randomizeAnswers"`
	Mode               Mode `json:"mode"`
	TimerMinutes       int  `json:"timerMinutes"` // 0 = unlimited
}

// Valid reports whether the config can start a session.
func (c Config) Valid() bool {
	return (c.Mode == ModePractice || c.Mode == ModeExam) && c.TimerMinutes >= 0
}

// DisplayVariant is one answer option in display order, carrying the
// index it had in the authored question so answers stay comparable under
// shuffling.
type DisplayVariant struct {
	Text          string `json:"text"`
	OriginalIndex int    `json:"originalIndex"`
}

// QuestionView is the client-facing snapshot of one question within a
// session. Eliminated holds original indices hidden by the 50/50 aid;
// positions in Variants are preserved.
type QuestionView struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	Variants       []DisplayVariant `json:"variants"`
	Answer         *int             `json:"answer,omitempty"` // chosen original index
	CorrectIndex   *int             `json:"correctIndex,omitempty"`
	Eliminated     []int            `json:"eliminated,omitempty"`
	FiftyFiftyUsed bool             `json:"fiftyFiftyUsed"`
}

// View is the full client-facing snapshot of a session.
type View struct {
	SessionID            string       `json:"sessionId"`
	QuizID               string       `json:"quizId"`
	QuizTitle            string       `json:"quizTitle"`
	Mode                 Mode         `json:"mode"`
	CurrentIndex         int          `json:"currentIndex"`
	TotalQuestions       int          `json:"totalQuestions"`
	Answered             int          `json:"answered"`
	TimerArmed           bool         `json:"timerArmed"`
	TimeRemainingSeconds int          `json:"timeRemainingSeconds"`
	Finished             bool         `json:"finished"`
	Question             QuestionView `json:"question"`
}
