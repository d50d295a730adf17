package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_PersistedShape(t *testing.T) {
	plain, err := json.Marshal(PlainText("hello"))
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(plain))

	blocks, err := json.Marshal(Blocks(
		TextBlock("checking"),
		ToolUseBlock("tu_1", "get_events", map[string]any{"days": 1}),
	))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"text","text":"checking"},
		{"type":"tool_use","id":"tu_1","name":"get_events","input":{"days":1}}
	]`, string(blocks))

	results, err := json.Marshal(Blocks(ToolResultBlock("tu_1", "[]")))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"tool_result","tool_use_id":"tu_1","content":"[]"}]`, string(results))
}

func TestContent_ToolUseWithoutInputKeepsEmptyObject(t *testing.T) {
	data, err := json.Marshal(Blocks(ToolUseBlock("tu_1", "get_task_lists", nil)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"input":{}`)
}

func TestContent_Unmarshal(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`"plain"`), &c))
	assert.True(t, c.IsPlain())
	assert.Equal(t, "plain", c.Text())

	require.NoError(t, json.Unmarshal([]byte(`[{"type":"tool_use","id":"a","name":"b","input":{}},{"type":"text","text":"x"}]`), &c))
	assert.False(t, c.IsPlain())
	require.Len(t, c.Blocks(), 2)
	text, ok := c.FirstText()
	assert.True(t, ok)
	assert.Equal(t, "x", text)
	assert.Len(t, c.ToolUses(), 1)
}

func TestContent_UnmarshalRejectsUnknown(t *testing.T) {
	var c Content
	assert.Error(t, json.Unmarshal([]byte(`[{"type":"image"}]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
	assert.Error(t, json.Unmarshal([]byte(`[{"type":"tool_use","name":"x"}]`), &c))
}

func TestContent_FirstTextMissing(t *testing.T) {
	_, ok := Blocks(ToolUseBlock("a", "b", nil)).FirstText()
	assert.False(t, ok)
}

func TestIsFactType(t *testing.T) {
	assert.True(t, IsFactType("preference"))
	assert.False(t, IsFactType("mood"))
}
