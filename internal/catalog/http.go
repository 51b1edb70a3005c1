package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/metrics"
	httperrors "github.com/platonusquiz/server/pkg/http/errors"
	"github.com/platonusquiz/server/pkg/http/identity"
)

// HTTPHandlers provides REST endpoints for the quiz catalog.
type HTTPHandlers struct {
	service *Service
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for catalog endpoints.
func NewHTTPHandlers(service *Service, m *metrics.Metrics, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		metrics: m,
		logger:  logger.With().Str("component", "catalog_http").Logger(),
	}
}

// CreateQuizRequest is the payload for POST /v1/quizzes. Questions
// usually come straight from a parse or import preview.
type CreateQuizRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []domain.Question `json:"questions"`
}

// CreateQuiz handles POST /v1/quizzes
func (h *HTTPHandlers) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromRequest(r)
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "title is required", "title")
		return
	}
	if len(req.Questions) == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeEmptyQuiz, "questions must not be empty", "questions")
		return
	}
	for i := range req.Questions {
		if req.Questions[i].ID == "" {
			req.Questions[i].ID = uuid.NewString()
		}
		if !req.Questions[i].Valid() {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed,
				"each question needs text, at least one variant, and a correct index in range", "questions")
			return
		}
	}

	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}
	if err := h.service.AddQuiz(r.Context(), quiz); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create quiz")
		httperrors.RespondInternalError(w, "Failed to store quiz")
		return
	}

	h.metrics.QuizzesCreated.Inc()
	h.respondJSON(w, http.StatusCreated, quiz)
}

// ListQuizzes handles GET /v1/quizzes
func (h *HTTPHandlers) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"quizzes": h.service.ListQuizzes(),
	})
}

// GetQuiz handles GET /v1/quizzes/{id}
func (h *HTTPHandlers) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Quiz not found")
		return
	}
	h.respondJSON(w, http.StatusOK, quiz)
}

// DeleteQuiz handles DELETE /v1/quizzes/{id}
func (h *HTTPHandlers) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.DeleteQuiz(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Quiz not found")
			return
		}
		h.logger.Error().Err(err).Str("quiz_id", id).Msg("failed to delete quiz")
		httperrors.RespondInternalError(w, "Failed to delete quiz")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateFavoritesQuiz handles POST /v1/favorites/quiz
func (h *HTTPHandlers) CreateFavoritesQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionIDs []string `json:"questionIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	quiz, err := h.service.CreateFavoritesQuiz(req.QuestionIDs)
	if err != nil {
		// None of the ids resolve to a live question, so there is
		// nothing to practice.
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "No favorited questions available")
		return
	}
	h.respondJSON(w, http.StatusCreated, quiz)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
