package parser

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	"github.com/platonusquiz/server/internal/metrics"
	httperrors "github.com/platonusquiz/server/pkg/http/errors"
)

// 5 MiB is plenty for a spreadsheet of questions.
const maxImportBytes = 5 << 20

// HTTPHandlers provides the authoring preview endpoints: raw text and
// tabular files in, parsed questions out. Nothing is persisted here;
// the client reviews the preview and creates the quiz separately.
type HTTPHandlers struct {
	parser  *Parser
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for parsing endpoints.
func NewHTTPHandlers(parser *Parser, m *metrics.Metrics, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		parser:  parser,
		metrics: m,
		logger:  logger.With().Str("component", "parser_http").Logger(),
	}
}

// ParseText handles POST /v1/quizzes/parse
func (h *HTTPHandlers) ParseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "text is required", "text")
		return
	}

	questions := h.parser.Parse(r.Context(), req.Text)
	h.metrics.QuestionsParsed.WithLabelValues("text").Add(float64(len(questions)))
	h.respondQuestions(w, questions)
}

// Import handles POST /v1/quizzes/import (multipart, field "file")
func (h *HTTPHandlers) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "file is required", "file")
		return
	}
	defer file.Close()

	var (
		questions []domain.Question
		source    string
	)
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		source = "csv"
		questions, err = h.parser.ParseCSV(file)
	case ".xlsx":
		source = "xlsx"
		questions, err = h.parser.ParseXLSX(file)
	default:
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnsupportedFormat, "Only .csv and .xlsx files are supported")
		return
	}
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeParseFailed, parseErr.Error())
			return
		}
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("import failed")
		httperrors.RespondInternalError(w, "Failed to read uploaded file")
		return
	}

	h.metrics.QuestionsParsed.WithLabelValues(source).Add(float64(len(questions)))
	h.respondQuestions(w, questions)
}

func (h *HTTPHandlers) respondQuestions(w http.ResponseWriter, questions []domain.Question) {
	if questions == nil {
		questions = []domain.Question{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"questions": questions})
}
