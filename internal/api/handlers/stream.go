package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/progress"
	"github.com/wonny/grocer/internal/recommend"
)

const (
	streamRequestTimeout = 30 * time.Second
	streamWriteTimeout   = 10 * time.Second
)

// Stream message types
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

// StreamMessage is one server → client frame on the progress stream
type StreamMessage struct {
	Type           string                    `json:"type"`
	Step           *int                      `json:"step,omitempty"`
	Label          string                    `json:"label,omitempty"`
	Recommendation *contracts.Recommendation `json:"recommendation,omitempty"`
	Error          string                    `json:"error,omitempty"`
	Fields         map[string]string         `json:"fields,omitempty"`
}

func (h *RecommendHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkOrigin accepts browser origins listed in the config.
// Requests without an Origin header are rejected.
func (h *RecommendHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	h.logger.WithField("origin", origin).Warn("WebSocket connection rejected: origin not allowed")
	return false
}

// Stream runs one analysis over a WebSocket, pushing a progress frame
// before each stage and then the result or an error.
// GET /api/recommendations/stream
func (h *RecommendHandler) Stream(w http.ResponseWriter, r *http.Request) {
	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(streamRequestTimeout)); err != nil {
		return
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		h.logger.WithError(err).Debug("WebSocket request not received")
		return
	}
	conn.SetReadDeadline(time.Time{})

	req, err := decodeStreamRequest(data)
	if err != nil {
		h.writeError(conn, err)
		h.closeNormal(conn)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Any read after the request is either a close or a protocol error;
	// both abort the analysis.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	req.OnProgress = func(step int) {
		s := step
		h.write(conn, StreamMessage{
			Type:  MessageProgress,
			Step:  &s,
			Label: progress.Stage(step).Label(),
		})
	}

	rec, err := h.service.Recommend(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Debug("WebSocket client went away during analysis")
			return
		}
		h.logger.WithError(err).Warn("Streamed recommendation failed")
		h.writeError(conn, err)
		h.closeNormal(conn)
		return
	}

	h.write(conn, StreamMessage{Type: MessageResult, Recommendation: rec})
	h.closeNormal(conn)
}

func decodeStreamRequest(data []byte) (recommend.Request, error) {
	var body RecommendRequest
	if err := json.Unmarshal(data, &body); err != nil {
		return recommend.Request{}, &ValidationError{
			Message: "invalid request body",
			Fields:  map[string]string{"body": err.Error()},
		}
	}
	if err := validateStruct(&body); err != nil {
		return recommend.Request{}, err
	}
	return body.ToRequest()
}

func (h *RecommendHandler) write(conn *websocket.Conn, msg StreamMessage) {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).WithField("type", msg.Type).Debug("WebSocket write failed")
	}
}

func (h *RecommendHandler) writeError(conn *websocket.Conn, err error) {
	msg := StreamMessage{Type: MessageError, Error: err.Error()}

	var verr *ValidationError
	if errors.As(err, &verr) {
		msg.Error = verr.Message
		msg.Fields = verr.Fields
	} else if !isInputError(err) {
		msg.Error = "Failed to build recommendation"
	}
	h.write(conn, msg)
}

func (h *RecommendHandler) closeNormal(conn *websocket.Conn) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}
