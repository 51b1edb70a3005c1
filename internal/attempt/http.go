package attempt

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	httperrors "github.com/platonusquiz/server/pkg/http/errors"
	"github.com/platonusquiz/server/pkg/http/identity"
)

// HTTPHandlers provides REST endpoints for attempt history.
type HTTPHandlers struct {
	store  *Store
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for attempt endpoints.
func NewHTTPHandlers(store *Store, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		store:  store,
		logger: logger.With().Str("component", "attempt_http").Logger(),
	}
}

// List handles GET /v1/attempts. The caller's own history by default;
// ?quiz_id= narrows to one quiz instead.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromRequest(r)
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var attempts []domain.Attempt
	if quizID := r.URL.Query().Get("quiz_id"); quizID != "" {
		attempts = h.store.QueryByQuiz(quizID)
	} else {
		attempts = h.store.QueryByUser(userID)
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

// Get handles GET /v1/attempts/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	att, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Attempt not found")
		return
	}
	h.respondJSON(w, http.StatusOK, att)
}

// BestScore handles GET /v1/quizzes/{id}/best-score
func (h *HTTPHandlers) BestScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromRequest(r)
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	score, found := h.store.BestScore(r.PathValue("id"), userID)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"bestScore": score,
		"found":     found,
	})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
