package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropic(url string) *Anthropic {
	a := NewAnthropic(url, "test-key", "haiku", "sonnet")
	a.retrier = retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
	return a
}

func TestAnthropic_InvokeParsesBlocks(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		fmt.Fprint(w, `{
			"model": "sonnet",
			"stop_reason": "tool_use",
			"content": [
				{"type": "text", "text": "Checking."},
				{"type": "tool_use", "id": "tu_1", "name": "get_events", "input": {"days": 2}}
			]
		}`)
	}))
	defer server.Close()

	a := newTestAnthropic(server.URL)
	resp, err := a.Invoke(context.Background(), core.ModelRequest{
		Tier:      core.TierSlow,
		System:    "sys",
		Messages:  []core.Message{{Role: core.RoleUser, Content: core.PlainText("hi"), Timestamp: time.Now()}},
		MaxTokens: 4096,
	})
	require.NoError(t, err)

	assert.Equal(t, "sonnet", got["model"])
	assert.Equal(t, "sys", got["system"])
	assert.Equal(t, float64(4096), got["max_tokens"])
	msgs := got["messages"].([]any)
	assert.NotContains(t, msgs[0].(map[string]any), "timestamp")

	assert.Equal(t, core.StopToolUse, resp.StopReason)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, "Checking.", resp.Content[0].Text)
	assert.Equal(t, "get_events", resp.Content[1].ToolUse.Name)
	assert.Equal(t, float64(2), resp.Content[1].ToolUse.Input["days"])
}

func TestAnthropic_TierSelectsModel(t *testing.T) {
	a := NewAnthropic("http://x", "k", "haiku", "sonnet")
	assert.Equal(t, "haiku", a.modelFor(core.TierFast))
	assert.Equal(t, "sonnet", a.modelFor(core.TierSlow))
}

func TestAnthropic_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(529)
			fmt.Fprint(w, `{"type":"error","error":{"type":"overloaded_error"}}`)
			return
		}
		fmt.Fprint(w, `{"stop_reason":"end_turn","content":[{"type":"text","text":"ok"}]}`)
	}))
	defer server.Close()

	resp, err := newTestAnthropic(server.URL).Invoke(context.Background(), core.ModelRequest{MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, core.StopEndTurn, resp.StopReason)
}

func TestAnthropic_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `bad request`)
	}))
	defer server.Close()

	_, err := newTestAnthropic(server.URL).Invoke(context.Background(), core.ModelRequest{MaxTokens: 10})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

const sampleStream = `event: message_start
data: {"type":"message_start","message":{"model":"haiku","content":[]}}

event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Let me "}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"look."}}

event: content_block_stop
data: {"type":"content_block_stop","index":0}

event: content_block_start
data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tu_9","name":"list_emails","input":{}}}

event: content_block_delta
data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"max_"}}

event: content_block_delta
data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"results\": 5}"}}

event: content_block_stop
data: {"type":"content_block_stop","index":1}

event: message_delta
data: {"type":"message_delta","delta":{"stop_reason":"tool_use"}}

event: message_stop
data: {"type":"message_stop"}
`

func TestAnthropic_StreamAssemblesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"stream":true`)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sampleStream)
	}))
	defer server.Close()

	var deltas []string
	resp, err := newTestAnthropic(server.URL).Stream(context.Background(), core.ModelRequest{MaxTokens: 10},
		func(s string) { deltas = append(deltas, s) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Let me ", "look."}, deltas)
	assert.Equal(t, core.StopToolUse, resp.StopReason)
	assert.Equal(t, "haiku", resp.Model)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, "Let me look.", resp.Content[0].Text)
	require.NotNil(t, resp.Content[1].ToolUse)
	assert.Equal(t, "tu_9", resp.Content[1].ToolUse.ID)
	assert.Equal(t, float64(5), resp.Content[1].ToolUse.Input["max_results"])
}

func TestReadStream_ErrorEvent(t *testing.T) {
	stream := "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"
	_, err := readStream(context.Background(), strings.NewReader(stream), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Overloaded")
}

func TestReadStream_CutOffBeforeMessageStop(t *testing.T) {
	stream := `event: message_start
data: {"type":"message_start","message":{"model":"haiku"}}

event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Your next meet"}}
`
	var deltas []string
	_, err := readStream(context.Background(), strings.NewReader(stream), func(s string) { deltas = append(deltas, s) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ended before message_stop")
	assert.Equal(t, []string{"Your next meet"}, deltas)
}

func TestAnthropic_StreamClientHasNoOverallTimeout(t *testing.T) {
	a := NewAnthropic("http://localhost", "k", "haiku", "sonnet")
	assert.NotZero(t, a.client.Timeout)
	assert.Zero(t, a.streamClient.Timeout)
}
