package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePairing(t *testing.T) {
	use := func(ids ...string) Message {
		var blocks []Block
		for _, id := range ids {
			blocks = append(blocks, ToolUseBlock(id, "tool", nil))
		}
		return Message{Role: RoleAssistant, Content: Blocks(blocks...)}
	}
	result := func(ids ...string) Message {
		var blocks []Block
		for _, id := range ids {
			blocks = append(blocks, ToolResultBlock(id, "ok"))
		}
		return Message{Role: RoleUser, Content: Blocks(blocks...)}
	}
	user := Message{Role: RoleUser, Content: PlainText("hi")}
	answer := Message{Role: RoleAssistant, Content: Blocks(TextBlock("done"))}

	tests := []struct {
		name         string
		input        []Message
		allowPending bool
		wantErr      bool
	}{
		{name: "empty", input: nil},
		{name: "no tools", input: []Message{user, answer}},
		{name: "paired", input: []Message{user, use("a", "b"), result("b", "a"), answer}},
		{name: "missing result", input: []Message{user, use("a", "b"), result("a")}, wantErr: true},
		{name: "duplicate result", input: []Message{user, use("a"), result("a", "a")}, wantErr: true},
		{name: "stray result", input: []Message{user, use("a"), result("a", "z")}, wantErr: true},
		{name: "followed by assistant", input: []Message{user, use("a"), answer}, wantErr: true},
		{name: "pending rejected", input: []Message{user, use("a")}, wantErr: true},
		{name: "pending allowed", input: []Message{user, use("a")}, allowPending: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePairing(tt.input, tt.allowPending)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
