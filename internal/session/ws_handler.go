package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
	httperrors "github.com/platonusquiz/server/pkg/http/errors"
	ws "github.com/platonusquiz/server/pkg/http/ws"
)

// WSHandler serves the live-session socket. The client drives the
// session over it (answers, fifty-fifty, navigation) and receives a
// fresh state snapshot after every action. Timer expiry is pushed the
// same way, which is the whole point of the socket: without it the
// client would only learn about the auto-finalize by polling.
type WSHandler struct {
	manager *Manager
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewWSHandler creates the session WebSocket handler and installs it as
// the manager's finalization listener.
func NewWSHandler(manager *Manager, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	h := &WSHandler{
		manager: manager,
		hub:     hub,
		logger:  logger.With().Str("component", "session_ws").Logger(),
	}
	manager.SetNotifier(h)
	return h
}

// SessionFinalized pushes the attempt to the session's client. Missing
// connection just means the client is not on the socket.
func (h *WSHandler) SessionFinalized(sessionID string, att domain.Attempt, trigger string) {
	payload, err := json.Marshal(map[string]interface{}{
		"attempt": att,
		"trigger": trigger,
	})
	if err != nil {
		return
	}
	if err := h.hub.SendToSession(sessionID, ws.Message{Type: ws.TypeFinalized, Payload: payload}); err != nil {
		if err != ws.ErrConnectionNotFound {
			h.logger.Warn().Err(err).Str("session_id", sessionID).Msg("finalize push failed")
		}
		return
	}
	h.hub.Unregister(sessionID)
}

// HandleWebSocket handles GET /ws/sessions?session_id=...
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "Missing session_id")
		return
	}
	if _, err := h.manager.Get(sessionID); err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(sessionID, wsConn)

	go wsConn.WritePump()

	h.pushState(sessionID)
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(sessionID, msg)
	})

	h.hub.Unregister(sessionID)
}

// handleMessage routes incoming WebSocket messages.
func (h *WSHandler) handleMessage(sessionID string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeAnswer:
		var req ws.AnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(sessionID, httperrors.ErrCodeInvalidPayload, "Invalid answer payload")
		}
		if _, err := h.manager.RecordAnswer(sessionID, req.QuestionID, req.VariantIndex); err != nil {
			return h.sendDomainError(sessionID, err)
		}
		return h.pushState(sessionID)

	case ws.TypeFiftyFifty:
		var req ws.FiftyFiftyPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(sessionID, httperrors.ErrCodeInvalidPayload, "Invalid fifty-fifty payload")
		}
		eliminated, err := h.manager.UseFiftyFifty(sessionID, req.QuestionID)
		if err != nil {
			return h.sendDomainError(sessionID, err)
		}
		if err := h.send(sessionID, ws.TypeEliminated, ws.EliminatedPayload{
			QuestionID: req.QuestionID,
			Eliminated: eliminated,
		}); err != nil {
			return err
		}
		return h.pushState(sessionID)

	case ws.TypeAdvance:
		var req ws.AdvancePayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(sessionID, httperrors.ErrCodeInvalidPayload, "Invalid advance payload")
		}
		if _, err := h.manager.Advance(sessionID, req.Delta); err != nil {
			return h.sendDomainError(sessionID, err)
		}
		return h.pushState(sessionID)

	case ws.TypeFinalize:
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		// The attempt arrives through the finalization push.
		if _, err := h.manager.Finalize(ctx, sessionID); err != nil {
			return h.sendDomainError(sessionID, err)
		}
		return nil

	case ws.TypePing:
		return h.hub.SendToSession(sessionID, ws.Message{Type: ws.TypePong})

	default:
		return h.sendError(sessionID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *WSHandler) pushState(sessionID string) error {
	view, err := h.manager.Get(sessionID)
	if err != nil {
		return err
	}
	return h.send(sessionID, ws.TypeSessionState, view)
}

func (h *WSHandler) send(sessionID, msgType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.hub.SendToSession(sessionID, ws.Message{Type: msgType, Payload: raw})
}

func (h *WSHandler) sendError(sessionID, code, message string) error {
	return h.send(sessionID, ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
}

func (h *WSHandler) sendDomainError(sessionID string, err error) error {
	code := httperrors.ErrCodeInternalError
	switch err {
	case domain.ErrSessionNotFound:
		code = httperrors.ErrCodeSessionNotFound
	case domain.ErrSessionFinished:
		code = httperrors.ErrCodeSessionFinished
	case domain.ErrAnswerLocked:
		code = httperrors.ErrCodeAnswerLocked
	case domain.ErrQuestionNotFound:
		code = httperrors.ErrCodeQuestionNotFound
	case domain.ErrVariantOutOfRange:
		code = httperrors.ErrCodeVariantOutOfRange
	case domain.ErrVariantEliminated:
		code = httperrors.ErrCodeVariantEliminated
	}
	return h.sendError(sessionID, code, err.Error())
}
