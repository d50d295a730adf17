package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const anthropicVersion = "2023-06-01"

// Anthropic talks to the Messages API. The fast tier maps to the Haiku
// model and the slow tier to Sonnet.
type Anthropic struct {
	baseProvider
	fastModel string
	slowModel string
}

func NewAnthropic(baseURL, apiKey, fastModel, slowModel string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(strings.TrimRight(baseURL, "/"), apiKey),
		fastModel:    fastModel,
		slowModel:    slowModel,
	}
}

func (a *Anthropic) modelFor(tier core.ModelTier) string {
	if tier == core.TierSlow {
		return a.slowModel
	}
	return a.fastModel
}

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []core.Message `json:"messages"`
	Tools     []core.Tool    `json:"tools,omitempty"`
	Stream    bool           `json:"stream,omitempty"`
}

type anthropicContent struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
}

type anthropicStreamEvent struct {
	Type         string             `json:"type"`
	Index        int                `json:"index"`
	ContentBlock *anthropicContent  `json:"content_block,omitempty"`
	Delta        *anthropicDelta    `json:"delta,omitempty"`
	Message      *anthropicResponse `json:"message,omitempty"`
	Error        *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicDelta struct {
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

func (a *Anthropic) buildRequest(req core.ModelRequest, stream bool) anthropicRequest {
	// Plain-text wire messages drop their timestamps; only role and content go out.
	messages := make([]core.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = core.Message{Role: m.Role, Content: m.Content}
	}
	return anthropicRequest{
		Model:     a.modelFor(req.Tier),
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  messages,
		Tools:     req.Tools,
		Stream:    stream,
	}
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (a *Anthropic) Invoke(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	payload := a.buildRequest(req, false)

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, a.headers())
	if err != nil {
		return core.ModelResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.ModelResponse{}, fmt.Errorf("read body: %w", err)
	}

	var result anthropicResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ModelResponse{}, fmt.Errorf("decode: %w", err)
	}

	out := core.ModelResponse{
		StopReason: core.StopReason(result.StopReason),
		Model:      result.Model,
	}
	for _, c := range result.Content {
		if b, ok := c.block(); ok {
			out.Content = append(out.Content, b)
		}
	}

	log.FromCtx(ctx).Debug().
		Str("model", out.Model).
		Str("stop_reason", string(out.StopReason)).
		Int("blocks", len(out.Content)).
		Msg("model response")
	return out, nil
}

func (c anthropicContent) block() (core.Block, bool) {
	switch c.Type {
	case "text":
		return core.TextBlock(c.Text), true
	case "tool_use":
		return core.ToolUseBlock(c.ID, c.Name, c.Input), true
	default:
		// thinking and other block kinds are not persisted
		return core.Block{}, false
	}
}

func (a *Anthropic) Stream(ctx context.Context, req core.ModelRequest, onText func(string)) (core.ModelResponse, error) {
	payload := a.buildRequest(req, true)

	resp, err := a.doStream(ctx, http.MethodPost, "/v1/messages", payload, a.headers())
	if err != nil {
		return core.ModelResponse{}, err
	}
	defer resp.Body.Close()

	return readStream(ctx, resp.Body, onText)
}

// streamBlock accumulates one content block across delta events.
type streamBlock struct {
	kind    string
	text    strings.Builder
	id      string
	name    string
	jsonBuf strings.Builder
}

func readStream(ctx context.Context, body io.Reader, onText func(string)) (core.ModelResponse, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		blocks  []*streamBlock
		out     core.ModelResponse
		stopped bool
	)

	blockAt := func(i int) *streamBlock {
		for len(blocks) <= i {
			blocks = append(blocks, nil)
		}
		return blocks[i]
	}

	for scanner.Scan() {
		line := scanner.Text()

		// SSE format: "event: <type>" followed by "data: <json>"
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			continue
		}

		switch event.Type {
		case "message_start":
			if event.Message != nil {
				out.Model = event.Message.Model
			}

		case "content_block_start":
			if event.ContentBlock == nil {
				continue
			}
			blockAt(event.Index)
			b := &streamBlock{kind: event.ContentBlock.Type, id: event.ContentBlock.ID, name: event.ContentBlock.Name}
			b.text.WriteString(event.ContentBlock.Text)
			blocks[event.Index] = b

		case "content_block_delta":
			b := blockAt(event.Index)
			if b == nil || event.Delta == nil {
				continue
			}
			switch event.Delta.Type {
			case "text_delta":
				b.text.WriteString(event.Delta.Text)
				if onText != nil && event.Delta.Text != "" {
					onText(event.Delta.Text)
				}
			case "input_json_delta":
				b.jsonBuf.WriteString(event.Delta.PartialJSON)
			}

		case "message_delta":
			if event.Delta != nil && event.Delta.StopReason != "" {
				out.StopReason = core.StopReason(event.Delta.StopReason)
			}

		case "message_stop":
			stopped = true

		case "error":
			msg := "stream error"
			if event.Error != nil {
				msg = event.Error.Type + ": " + event.Error.Message
			}
			return core.ModelResponse{}, fmt.Errorf("anthropic stream: %s", msg)
		}
	}

	if err := scanner.Err(); err != nil {
		return core.ModelResponse{}, fmt.Errorf("read stream: %w", err)
	}
	if !stopped {
		return core.ModelResponse{}, errors.New("anthropic stream: ended before message_stop")
	}

	for _, b := range blocks {
		if b == nil {
			continue
		}
		switch b.kind {
		case "text":
			out.Content = append(out.Content, core.TextBlock(b.text.String()))
		case "tool_use":
			var input map[string]any
			if b.jsonBuf.Len() > 0 {
				if err := json.Unmarshal([]byte(b.jsonBuf.String()), &input); err != nil {
					return core.ModelResponse{}, fmt.Errorf("decode tool input for %s: %w", b.name, err)
				}
			}
			out.Content = append(out.Content, core.ToolUseBlock(b.id, b.name, input))
		}
	}

	log.FromCtx(ctx).Debug().
		Str("model", out.Model).
		Str("stop_reason", string(out.StopReason)).
		Int("blocks", len(out.Content)).
		Msg("stream complete")
	return out, nil
}
