package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/sazed/pkg/retry"
)

type baseProvider struct {
	client *http.Client
	// streamClient has no overall timeout; a stream lasts as long as the
	// answer and is bounded by ctx.
	streamClient *http.Client
	retrier      *retry.Retrier
	baseURL string
	apiKey  string
}

func newBaseProvider(baseURL, apiKey string) baseProvider {
	return baseProvider{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		streamClient: &http.Client{},
		retrier:      retry.NewDefaultRetrier(),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// StatusError is a non-2xx answer from the model API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the request is worth repeating: rate limits,
// server errors and Anthropic's 529 overload.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// doRequest sends body as JSON and returns a response with a 2xx status.
// Transient failures are retried; the caller owns the returned body.
func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	return b.send(ctx, b.client, method, path, body, headers)
}

// doStream is doRequest for streamed bodies.
func (b *baseProvider) doStream(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	return b.send(ctx, b.streamClient, method, path, body, headers)
}

func (b *baseProvider) send(ctx context.Context, client *http.Client, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
	}

	var resp *http.Response
	err := b.retrier.Do(ctx, func() error {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}

		for k, v := range headers {
			req.Header.Set(k, v)
		}
		req.Header.Set("Content-Type", "application/json")

		r, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			return fmt.Errorf("request: %w", err)
		}

		if r.StatusCode < 200 || r.StatusCode > 299 {
			raw, _ := io.ReadAll(io.LimitReader(r.Body, 64*1024))
			r.Body.Close()
			statusErr := &StatusError{StatusCode: r.StatusCode, Body: string(raw)}
			if statusErr.Transient() {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		resp = r
		return nil
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}
		return nil, err
	}
	return resp, nil
}
