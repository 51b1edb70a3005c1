package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/attempt"
	"github.com/platonusquiz/server/internal/catalog"
	"github.com/platonusquiz/server/internal/config"
	"github.com/platonusquiz/server/internal/parser"
	"github.com/platonusquiz/server/internal/session"
)

// Handlers bundles the per-feature HTTP handlers the router mounts.
type Handlers struct {
	Parser    *parser.HTTPHandlers
	Catalog   *catalog.HTTPHandlers
	Session   *session.HTTPHandlers
	Attempt   *attempt.HTTPHandlers
	SessionWS *session.WSHandler
}

// NewHTTPServer wires all routes of the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, reg *prometheus.Registry, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Authoring
	mux.HandleFunc("POST /v1/quizzes/parse", h.Parser.ParseText)
	mux.HandleFunc("POST /v1/quizzes/import", h.Parser.Import)

	// Catalog
	mux.HandleFunc("POST /v1/quizzes", h.Catalog.CreateQuiz)
	mux.HandleFunc("GET /v1/quizzes", h.Catalog.ListQuizzes)
	mux.HandleFunc("GET /v1/quizzes/{id}", h.Catalog.GetQuiz)
	mux.HandleFunc("DELETE /v1/quizzes/{id}", h.Catalog.DeleteQuiz)
	mux.HandleFunc("POST /v1/favorites/quiz", h.Catalog.CreateFavoritesQuiz)

	// Sessions
	mux.HandleFunc("POST /v1/sessions", h.Session.Start)
	mux.HandleFunc("GET /v1/sessions/{id}", h.Session.Get)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.Session.RecordAnswer)
	mux.HandleFunc("POST /v1/sessions/{id}/fifty-fifty", h.Session.UseFiftyFifty)
	mux.HandleFunc("POST /v1/sessions/{id}/advance", h.Session.Advance)
	mux.HandleFunc("POST /v1/sessions/{id}/finalize", h.Session.Finalize)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.Session.Abandon)
	mux.HandleFunc("GET /ws/sessions", h.SessionWS.HandleWebSocket)

	// History
	mux.HandleFunc("GET /v1/attempts", h.Attempt.List)
	mux.HandleFunc("GET /v1/attempts/{id}", h.Attempt.Get)
	mux.HandleFunc("GET /v1/quizzes/{id}/best-score", h.Attempt.BestScore)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: requestLogger(logger, mux),
	}
}

// requestLogger logs each request at debug with method and path.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("http request")
		next.ServeHTTP(w, r)
	})
}
