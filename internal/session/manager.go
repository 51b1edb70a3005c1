package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/attempt"
	"github.com/platonusquiz/server/internal/catalog"
	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/metrics"
)

const recordTimeout = 5 * time.Second

// Trigger labels for finalize metrics.
const (
	triggerUser  = "user"
	triggerTimer = "timer"
)

// Manager owns the live sessions of this process. Each session is an
// independent engine; the manager wires finalization into the attempt
// store and arms the exam countdown.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	catalog  *catalog.Service
	attempts *attempt.Store
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	newRand func() *rand.Rand

	notifyMu sync.RWMutex
	notify   Notifier
}

// Notifier receives finalization events, transport-side. The WebSocket
// layer uses it to push timer-expiry results to the session's client.
type Notifier interface {
	SessionFinalized(sessionID string, att domain.Attempt, trigger string)
}

type liveSession struct {
	engine *Engine
	timer  *time.Timer // nil when no countdown armed

	finalizeMu sync.Mutex
	pending    *domain.Attempt // finalized but not yet recorded
}

func NewManager(cat *catalog.Service, attempts *attempt.Store, m *metrics.Metrics, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*liveSession),
		catalog:  cat,
		attempts: attempts,
		metrics:  m,
		logger:   logger.With().Str("component", "session_manager").Logger(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetNotifier installs the finalization listener. Call before serving.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifyMu.Lock()
	m.notify = n
	m.notifyMu.Unlock()
}

// Start builds a session over the quiz and registers it. In exam mode
// with a nonzero timer the countdown is armed immediately; expiry forces
// finalization through the same path as an explicit finalize.
func (m *Manager) Start(quizID, userID string, cfg Config) (View, error) {
	quiz, err := m.catalog.GetQuiz(quizID)
	if err != nil {
		return View{}, err
	}

	engine, err := NewEngine(quiz, userID, cfg, m.newRand())
	if err != nil {
		return View{}, err
	}

	live := &liveSession{engine: engine}
	if deadline, armed := engine.Deadline(); armed {
		id := engine.ID()
		live.timer = time.AfterFunc(time.Until(deadline), func() { m.expire(id) })
	}

	m.mu.Lock()
	m.sessions[engine.ID()] = live
	m.mu.Unlock()

	m.metrics.SessionsStarted.Inc()
	m.logger.Info().
		Str("session_id", engine.ID()).
		Str("quiz_id", quizID).
		Str("user_id", userID).
		Str("mode", string(cfg.Mode)).
		Int("timer_minutes", cfg.TimerMinutes).
		Msg("session started")
	return engine.View(), nil
}

// Get returns the current view of a live session.
func (m *Manager) Get(sessionID string) (View, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	return live.engine.View(), nil
}

// RecordAnswer forwards an answer to the session.
func (m *Manager) RecordAnswer(sessionID, questionID string, originalIndex int) (View, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := live.engine.RecordAnswer(questionID, originalIndex); err != nil {
		return View{}, err
	}
	return live.engine.View(), nil
}

// UseFiftyFifty applies the elimination aid to a question.
func (m *Manager) UseFiftyFifty(sessionID, questionID string) ([]int, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return live.engine.UseFiftyFifty(questionID)
}

// Advance moves the session cursor.
func (m *Manager) Advance(sessionID string, delta int) (View, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	if _, err := live.engine.Advance(delta); err != nil {
		return View{}, err
	}
	return live.engine.View(), nil
}

// Finalize scores the session, records the attempt, and discards the
// session. Recording the attempt and bumping quiz stats is one unit
// inside the attempt store.
func (m *Manager) Finalize(ctx context.Context, sessionID string) (domain.Attempt, error) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return domain.Attempt{}, err
	}
	return m.finalize(ctx, live, triggerUser)
}

// Abandon discards a session without recording an attempt.
func (m *Manager) Abandon(sessionID string) error {
	m.mu.Lock()
	live, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	if live.timer != nil {
		live.timer.Stop()
	}
	m.logger.Info().Str("session_id", sessionID).Msg("session abandoned")
	return nil
}

// expire is the countdown callback. A session finalized by the user in
// the meantime reports ErrSessionFinished, which ends the race benignly.
func (m *Manager) expire(sessionID string) {
	live, err := m.lookup(sessionID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if _, err := m.finalize(ctx, live, triggerTimer); err != nil && err != domain.ErrSessionFinished {
		m.logger.Error().Err(err).Str("session_id", sessionID).Msg("timer finalize failed")
		return
	}
	m.logger.Info().Str("session_id", sessionID).Msg("session finalized by timer expiry")
}

func (m *Manager) finalize(ctx context.Context, live *liveSession, trigger string) (domain.Attempt, error) {
	live.finalizeMu.Lock()
	defer live.finalizeMu.Unlock()

	att, err := live.engine.Finalize()
	if err != nil {
		// A session that finalized but could not record its attempt
		// stays registered; a repeated finalize retries the record
		// with the cached attempt instead of failing outright.
		if err != domain.ErrSessionFinished || live.pending == nil {
			return domain.Attempt{}, err
		}
		att = *live.pending
	}

	if err := m.attempts.Record(ctx, att); err != nil {
		live.pending = &att
		m.logger.Error().Err(err).
			Str("session_id", live.engine.ID()).
			Msg("attempt record failed, session kept for retry")
		return domain.Attempt{}, err
	}
	live.pending = nil

	m.mu.Lock()
	delete(m.sessions, live.engine.ID())
	m.mu.Unlock()
	if live.timer != nil {
		live.timer.Stop()
	}

	m.metrics.AttemptsFinalized.WithLabelValues(string(live.engine.cfg.Mode), trigger).Inc()

	m.notifyMu.RLock()
	notify := m.notify
	m.notifyMu.RUnlock()
	if notify != nil {
		notify.SessionFinalized(live.engine.ID(), att, trigger)
	}
	return att, nil
}

func (m *Manager) lookup(sessionID string) (*liveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	live, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return live, nil
}
