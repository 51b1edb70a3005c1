package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Authoring errors
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeUnsupportedFormat = "unsupported_format"
	ErrCodeEmptyQuiz         = "empty_quiz"

	// Session errors
	ErrCodeSessionNotFound   = "session_not_found"
	ErrCodeSessionFinished   = "session_finished"
	ErrCodeAnswerLocked      = "answer_locked"
	ErrCodeQuestionNotFound  = "question_not_found"
	ErrCodeVariantOutOfRange = "variant_out_of_range"
	ErrCodeVariantEliminated = "variant_eliminated"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
