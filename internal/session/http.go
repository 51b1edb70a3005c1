package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	httperrors "github.com/platonusquiz/server/pkg/http/errors"
	"github.com/platonusquiz/server/pkg/http/identity"
)

// HTTPHandlers provides REST endpoints for live sessions.
type HTTPHandlers struct {
	manager *Manager
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(manager *Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// StartRequest is the payload for POST /v1/sessions.
type StartRequest struct {
	QuizID             string `json:"quizId"`
	Mode               Mode   `json:"mode"`
	RandomizeQuestions bool   `json:"randomizeQuestions"`
	RandomizeAnswers   bool   `json:"randomizeAnswers"`
	TimerMinutes       int    `json:"timerMinutes"`
}

// Start handles POST /v1/sessions
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromRequest(r)
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuizID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "quizId is required", "quizId")
		return
	}
	cfg := Config{
		Mode:               req.Mode,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeAnswers:   req.RandomizeAnswers,
		TimerMinutes:       req.TimerMinutes,
	}
	if !cfg.Valid() {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed,
			"mode must be practice or exam and timerMinutes must not be negative")
		return
	}

	view, err := h.manager.Start(req.QuizID, userID, cfg)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// RecordAnswer handles POST /v1/sessions/{id}/answers
func (h *HTTPHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID   string `json:"questionId"`
		VariantIndex int    `json:"variantIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.manager.RecordAnswer(r.PathValue("id"), req.QuestionID, req.VariantIndex)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// UseFiftyFifty handles POST /v1/sessions/{id}/fifty-fifty
func (h *HTTPHandlers) UseFiftyFifty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"questionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	eliminated, err := h.manager.UseFiftyFifty(r.PathValue("id"), req.QuestionID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"eliminated": eliminated})
}

// Advance handles POST /v1/sessions/{id}/advance
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.manager.Advance(r.PathValue("id"), req.Delta)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Finalize handles POST /v1/sessions/{id}/finalize
func (h *HTTPHandlers) Finalize(w http.ResponseWriter, r *http.Request) {
	att, err := h.manager.Finalize(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, att)
}

// Abandon handles DELETE /v1/sessions/{id}
func (h *HTTPHandlers) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Abandon(r.PathValue("id")); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Quiz not found")
	case errors.Is(err, domain.ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, domain.ErrEmptyQuiz):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeEmptyQuiz, "Quiz has no questions")
	case errors.Is(err, domain.ErrSessionFinished):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionFinished, "Session already finished")
	case errors.Is(err, domain.ErrAnswerLocked):
		httperrors.RespondConflict(w, httperrors.ErrCodeAnswerLocked, "Answer already recorded for this question")
	case errors.Is(err, domain.ErrQuestionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, "Question not in this session")
	case errors.Is(err, domain.ErrVariantOutOfRange):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeVariantOutOfRange, "Variant index out of range")
	case errors.Is(err, domain.ErrVariantEliminated):
		httperrors.RespondConflict(w, httperrors.ErrCodeVariantEliminated, "Variant was eliminated by fifty-fifty")
	default:
		h.logger.Error().Err(err).Msg("session operation failed")
		httperrors.RespondInternalError(w, "Session operation failed")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
