package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/sazed/internal/providers/gateway"
)

// kbTimeout covers slow sync runs on the gateway side.
const kbTimeout = 60 * time.Second

func (s *Server) proxyKB(method, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forwardKB(w, r, method, path, nil, nil)
	}
}

func (s *Server) handleKBSearch(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.forwardKB(w, r, http.MethodPost, "/kb/search", nil, body)
}

func (s *Server) handleKBSync(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = v
	}
	s.forwardKB(w, r, http.MethodPost, "/kb/sync", url.Values{"force": {strconv.FormatBool(force)}}, nil)
}

func (s *Server) handleKBDeleteFile(w http.ResponseWriter, r *http.Request) {
	path := "/kb/files/" + url.PathEscape(chi.URLParam(r, "id"))
	s.forwardKB(w, r, http.MethodDelete, path, nil, nil)
}

// forwardKB relays the gateway answer unchanged. Only transport failures are
// translated into gateway status codes.
func (s *Server) forwardKB(w http.ResponseWriter, r *http.Request, method, path string, query url.Values, body any) {
	if s.deps.KB == nil || !s.deps.KB.Configured() {
		errorResponse(w, http.StatusServiceUnavailable, "Gateway URL not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), kbTimeout)
	defer cancel()

	resp, err := s.deps.KB.Do(ctx, method, path, query, body)
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		errorResponse(w, http.StatusServiceUnavailable, "Gateway URL not configured")
		return
	case err != nil && gateway.IsTimeout(err):
		errorResponse(w, http.StatusGatewayTimeout, "Gateway timed out")
		return
	case err != nil:
		errorResponse(w, http.StatusBadGateway, "Gateway unreachable: "+err.Error())
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
