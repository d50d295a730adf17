package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/pkg/log"
)

type chatRequest struct {
	SessionID *string `json:"session_id"`
	Message   string  `json:"message"`
}

func (c chatRequest) session() string {
	if c.SessionID == nil {
		return ""
	}
	return *c.SessionID
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.deps.Agent.Run(r.Context(), req.session(), req.Message)
	if err != nil {
		failRequest(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{SessionID: res.SessionID, Response: res.Text})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// reject before the stream opens so the client still gets a status code
	if strings.TrimSpace(req.Message) == "" {
		failRequest(w, r, core.ErrEmptyMessage)
		return
	}
	if id := req.session(); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			failRequest(w, r, core.ErrInvalidSessionID)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		errorResponse(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger := log.FromCtx(r.Context())
	emit := func(e agent.Event) {
		if err := writeSSE(w, e.Name, e.Data); err != nil {
			logger.Debug().Err(err).Str("event", e.Name).Msg("failed to write SSE event")
			return
		}
		flusher.Flush()
	}

	if _, err := s.deps.Agent.RunStream(r.Context(), req.session(), req.Message, emit); err != nil {
		logger.Error().Err(err).Msg("streaming turn failed")
		emit(agent.Event{Name: "error", Data: map[string]any{"detail": "Request failed"}})
	}
}

func writeSSE(w http.ResponseWriter, event string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
