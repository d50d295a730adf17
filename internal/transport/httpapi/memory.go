package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/sazed/internal/core"
)

type upsertMemoryRequest struct {
	FactType   string   `json:"fact_type"`
	Key        string   `json:"key"`
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence"`
}

func (req upsertMemoryRequest) validate() string {
	switch {
	case !core.IsFactType(req.FactType):
		return "fact_type must be one of: " + strings.Join(core.FactTypes, ", ")
	case strings.TrimSpace(req.Key) == "":
		return "key cannot be empty"
	case strings.TrimSpace(req.Value) == "":
		return "value cannot be empty"
	case req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1):
		return "confidence must be between 0 and 1"
	}
	return ""
}

func (s *Server) handleListMemory(w http.ResponseWriter, r *http.Request) {
	facts, err := s.deps.Memory.Load(r.Context())
	if err != nil {
		failRequest(w, r, err)
		return
	}
	if facts == nil {
		facts = []core.Fact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"facts": facts})
}

func (s *Server) handleUpsertMemory(w http.ResponseWriter, r *http.Request) {
	var req upsertMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	fact, err := s.deps.Memory.Upsert(r.Context(), core.FactInput{
		FactType:   req.FactType,
		Key:        strings.TrimSpace(req.Key),
		Value:      strings.TrimSpace(req.Value),
		Confidence: confidence,
		Source:     core.SourceAPI,
	})
	if err != nil {
		failRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fact)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Memory.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failRequest(w, r, err)
		return
	}
	if !deleted {
		failRequest(w, r, core.ErrFactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
