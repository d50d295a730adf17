package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandevgo/sazed/internal/providers/gateway"
)

func (r *Registry) dispatchGateway(ctx context.Context, e *entry, args map[string]any) string {
	if raw, ok := args["url"]; ok {
		if err := checkURL(stringify(raw)); err != nil {
			return "Blocked: " + err.Error() + "."
		}
	}

	endpoint := e.def.Endpoint
	remaining := make(map[string]any, len(args))
	for k, v := range args {
		remaining[k] = v
	}
	for _, p := range e.def.PathParams {
		v, ok := remaining[p]
		if !ok || v == nil {
			return "Missing required path parameter: " + p
		}
		delete(remaining, p)
		endpoint = strings.ReplaceAll(endpoint, "{"+p+"}", url.PathEscape(stringify(v)))
	}

	if msg := e.validate(args); msg != "" {
		return msg
	}

	if !r.gateway.Configured() {
		return "Request error: " + gateway.ErrNotConfigured.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		resp *gateway.Response
		err  error
	)
	switch e.def.Method {
	case http.MethodGet:
		resp, err = r.gateway.Do(ctx, http.MethodGet, endpoint, queryValues(remaining), nil)
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		resp, err = r.gateway.Do(ctx, e.def.Method, endpoint, nil, remaining)
	case http.MethodDelete:
		resp, err = r.gateway.Do(ctx, http.MethodDelete, endpoint, nil, nil)
	default:
		return "Unsupported method: " + e.def.Method
	}

	if err != nil {
		if gateway.IsTimeout(err) {
			return "Request timed out."
		}
		return fmt.Sprintf("Request error: %v", err)
	}

	if e.def.Method == http.MethodDelete && resp.StatusCode == http.StatusNoContent {
		return "Deleted successfully."
	}
	if !resp.OK() {
		return fmt.Sprintf("Error %d: %s", resp.StatusCode, resp.Body)
	}

	return render(resp.Body)
}

// render pretty-prints JSON bodies, keeping key order; anything else is
// returned as is.
func render(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return string(body)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// queryValues turns remaining GET arguments into query parameters, dropping
// nulls and repeating keys for arrays.
func queryValues(args map[string]any) url.Values {
	q := url.Values{}
	for k, v := range args {
		switch val := v.(type) {
		case nil:
		case []any:
			for _, item := range val {
				if item != nil {
					q.Add(k, stringify(item))
				}
			}
		default:
			q.Set(k, stringify(val))
		}
	}
	return q
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
