package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/sazed/internal/core"
)

type conversationResponse struct {
	SessionID    string         `json:"session_id"`
	Messages     []core.Message `json:"messages"`
	MessageCount int            `json:"message_count"`
}

type archiveRequest struct {
	OlderThanHours *float64 `json:"older_than_hours"`
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.deps.Sessions.ListSessions(r.Context())
	if err != nil {
		failRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": sessions})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.deps.Sessions.GetSession(r.Context(), id); err != nil {
		failRequest(w, r, err)
		return
	}

	messages, err := s.deps.Sessions.Messages(r.Context(), id)
	if err != nil {
		failRequest(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		SessionID:    id,
		Messages:     messages,
		MessageCount: len(messages),
	})
}

func (s *Server) handleProcessConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.deps.Sessions.GetSession(r.Context(), id); err != nil {
		failRequest(w, r, err)
		return
	}

	messages, err := s.deps.Sessions.Messages(r.Context(), id)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	if len(messages) == 0 {
		errorResponse(w, http.StatusBadRequest, "Session has no messages to process")
		return
	}

	res, err := s.deps.Distiller.Process(r.Context(), id)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var olderThan time.Duration
	if req.OlderThanHours != nil {
		if *req.OlderThanHours <= 0 {
			errorResponse(w, http.StatusBadRequest, "older_than_hours must be positive")
			return
		}
		olderThan = time.Duration(*req.OlderThanHours * float64(time.Hour))
	}

	rep, err := s.deps.Archiver.Run(r.Context(), olderThan)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
