package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errorResponse(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// failRequest maps domain errors to client errors and hides everything else
// behind a generic 500.
func failRequest(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		errorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, core.ErrFactNotFound):
		errorResponse(w, http.StatusNotFound, "Memory not found")
	case errors.Is(err, core.ErrEmptyMessage):
		errorResponse(w, http.StatusBadRequest, "Message cannot be empty")
	case errors.Is(err, core.ErrInvalidSessionID):
		errorResponse(w, http.StatusBadRequest, "Invalid session id")
	case errors.Is(err, core.ErrRetentionTooShort):
		errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.FromCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		errorResponse(w, http.StatusInternalServerError, "Request failed")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
