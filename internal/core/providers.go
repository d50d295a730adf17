package core

import "context"

type ModelTier string

const (
	TierFast ModelTier = "fast"
	TierSlow ModelTier = "slow"
)

type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	StopToolUse StopReason = "tool_use"
)

type ModelRequest struct {
	Tier      ModelTier
	System    string
	Messages  []Message
	Tools     []Tool
	MaxTokens int
}

type ModelResponse struct {
	StopReason StopReason
	Content    []Block
	Model      string
}

// ModelProvider invokes a hosted language model.
// Stream delivers text increments through onText and returns the same
// final response Invoke would.
type ModelProvider interface {
	Invoke(ctx context.Context, req ModelRequest) (ModelResponse, error)
	Stream(ctx context.Context, req ModelRequest, onText func(string)) (ModelResponse, error)
}

// ToolDispatcher executes a named tool call and renders its outcome as text.
// Ordinary failures are encoded in the returned text, never as errors.
type ToolDispatcher interface {
	Schemas() []Tool
	Dispatch(ctx context.Context, name string, args map[string]any) string
}

// DocumentStore is an external destination for generated knowledge-base entries.
type DocumentStore interface {
	Write(ctx context.Context, doc Document) (string, error)
	Reindex(ctx context.Context) error
}

type Document struct {
	Name     string
	Content  string
	FolderID string
	MimeType string
}
