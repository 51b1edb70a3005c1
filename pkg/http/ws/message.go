package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeAnswer     = "answer"
	TypeFiftyFifty = "fifty_fifty"
	TypeAdvance    = "advance"
	TypeFinalize   = "finalize"

	// Server -> Client
	TypeSessionState = "session_state"
	TypeEliminated   = "eliminated"
	TypeFinalized    = "finalized"
	TypeError        = "error"
	TypePing         = "ping"
	TypePong         = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type AnswerPayload struct {
	QuestionID   string `json:"question_id"`
	VariantIndex int    `json:"variant_index"`
}

type FiftyFiftyPayload struct {
	QuestionID string `json:"question_id"`
}

type AdvancePayload struct {
	Delta int `json:"delta"`
}

// Server Messages (outgoing)

type EliminatedPayload struct {
	QuestionID string `json:"question_id"`
	Eliminated []int  `json:"eliminated"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
