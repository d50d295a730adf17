package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	SazedName      = "Sazed"
	SazedUserAgent = "Sazed-Agent/0.1"
	SazedVersion   = "0.1.0"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// Block is one typed element of a message's content.
// Exactly one of the variant fields is set, as selected by Type.
type Block struct {
	Type       BlockType
	Text       string
	ToolUse    *ToolUse
	ToolResult *ToolResult
}

type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

func ToolUseBlock(id, name string, input map[string]any) Block {
	if input == nil {
		input = map[string]any{}
	}
	return Block{Type: BlockToolUse, ToolUse: &ToolUse{ID: id, Name: name, Input: input}}
}

func ToolResultBlock(toolUseID, content string) Block {
	return Block{Type: BlockToolResult, ToolResult: &ToolResult{ToolUseID: toolUseID, Content: content}}
}

type wireBlock struct {
	Type      BlockType      `json:"type"`
	Text      *string        `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   *string        `json:"content,omitempty"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockText:
		text := b.Text
		return json.Marshal(wireBlock{Type: BlockText, Text: &text})
	case BlockToolUse:
		if b.ToolUse == nil {
			return nil, errors.New("tool_use block without payload")
		}
		input := b.ToolUse.Input
		if input == nil {
			input = map[string]any{}
		}
		// input must always be present, even when empty
		return json.Marshal(struct {
			Type  BlockType      `json:"type"`
			ID    string         `json:"id"`
			Name  string         `json:"name"`
			Input map[string]any `json:"input"`
		}{BlockToolUse, b.ToolUse.ID, b.ToolUse.Name, input})
	case BlockToolResult:
		if b.ToolResult == nil {
			return nil, errors.New("tool_result block without payload")
		}
		content := b.ToolResult.Content
		return json.Marshal(wireBlock{Type: BlockToolResult, ToolUseID: b.ToolResult.ToolUseID, Content: &content})
	default:
		return nil, fmt.Errorf("unknown block type %q", b.Type)
	}
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case BlockText:
		if w.Text == nil {
			return errors.New("text block without text")
		}
		*b = TextBlock(*w.Text)
	case BlockToolUse:
		if w.ID == "" || w.Name == "" {
			return errors.New("tool_use block without id or name")
		}
		*b = ToolUseBlock(w.ID, w.Name, w.Input)
	case BlockToolResult:
		if w.ToolUseID == "" {
			return errors.New("tool_result block without tool_use_id")
		}
		content := ""
		if w.Content != nil {
			content = *w.Content
		}
		*b = ToolResultBlock(w.ToolUseID, content)
	default:
		return fmt.Errorf("unknown block type %q", w.Type)
	}
	return nil
}

// Content is either plain text or an ordered sequence of blocks.
// Plain text serializes as a JSON string, blocks as a JSON array.
type Content struct {
	text   string
	blocks []Block
	plain  bool
}

func PlainText(text string) Content {
	return Content{text: text, plain: true}
}

func Blocks(blocks ...Block) Content {
	return Content{blocks: blocks}
}

func (c Content) IsPlain() bool { return c.plain }

func (c Content) Text() string { return c.text }

func (c Content) Blocks() []Block { return c.blocks }

// FirstText returns the plain text, or the first text block.
func (c Content) FirstText() (string, bool) {
	if c.plain {
		return c.text, true
	}
	for _, b := range c.blocks {
		if b.Type == BlockText {
			return b.Text, true
		}
	}
	return "", false
}

func (c Content) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, b := range c.blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, *b.ToolUse)
		}
	}
	return uses
}

func (c Content) ToolResults() []ToolResult {
	var results []ToolResult
	for _, b := range c.blocks {
		if b.Type == BlockToolResult {
			results = append(results, *b.ToolResult)
		}
	}
	return results
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.plain {
		return json.Marshal(c.text)
	}
	if c.blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.blocks)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty content")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = PlainText(s)
	case '[':
		var blocks []Block
		if err := json.Unmarshal(data, &blocks); err != nil {
			return err
		}
		*c = Blocks(blocks...)
	default:
		return fmt.Errorf("content must be a string or an array, got %q", data[0])
	}
	return nil
}

type Message struct {
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

type Session struct {
	ID           string     `json:"session_id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	MessageCount int        `json:"message_count"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	SummaryRef   *string    `json:"summary_ref,omitempty"`
}

const (
	FactPersonal     = "personal"
	FactPreference   = "preference"
	FactProject      = "project"
	FactInstruction  = "instruction"
	FactRelationship = "relationship"
)

var FactTypes = []string{FactPersonal, FactPreference, FactProject, FactInstruction, FactRelationship}

func IsFactType(s string) bool {
	for _, t := range FactTypes {
		if t == s {
			return true
		}
	}
	return false
}

type Fact struct {
	ID         string    `json:"id"`
	FactType   string    `json:"fact_type"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FactInput is a write request against the memory store.
type FactInput struct {
	FactType   string
	Key        string
	Value      string
	Confidence float64
	Source     string
}

const (
	SourceUserExplicit = "user_explicit"
	SourceAPI          = "api"
)

// Tool is a model-facing tool schema.
type Tool struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	InputSchema  json.RawMessage `json:"input_schema"`
	CacheControl *CacheControl   `json:"cache_control,omitempty"`
}

type CacheControl struct {
	Type string `json:"type"`
}
