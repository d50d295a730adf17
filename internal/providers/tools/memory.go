package tools

import (
	"context"
	"fmt"

	"github.com/sandevgo/sazed/internal/core"
)

const memoryUpdateSchema = `
{
  "type": "object",
  "properties": {
    "fact_type": {
      "type": "string",
      "enum": ["personal", "preference", "project", "instruction", "relationship"],
      "description": "Category of the fact."
    },
    "key": { "type": "string", "description": "Short identifier for the fact, e.g. 'primary_language'." },
    "value": { "type": "string", "description": "The fact value, e.g. 'Python'." }
  },
  "required": ["fact_type", "key", "value"]
}
`

const memoryUpdateTool = "memory_update"

func memoryTools() []Definition {
	return []Definition{
		{
			Name: memoryUpdateTool,
			Description: "Store or update a fact about the user. " +
				"Call this when the user explicitly tells you something to remember, " +
				"e.g. 'remember that I prefer dark mode'.",
			Schema: memoryUpdateSchema,
			Method: MethodInternal,
		},
	}
}

// internalHandler runs an in-process tool and renders its outcome.
type internalHandler func(ctx context.Context, args map[string]any) string

func (r *Registry) internalHandlers() map[string]internalHandler {
	return map[string]internalHandler{
		memoryUpdateTool: r.memoryUpdate,
	}
}

// memoryUpdate stores an explicitly stated fact at full confidence, so it
// always wins over anything inferred earlier.
func (r *Registry) memoryUpdate(ctx context.Context, args map[string]any) string {
	if r.memory == nil {
		return "Memory is not available."
	}

	factType, _ := args["fact_type"].(string)
	key, _ := args["key"].(string)
	value, _ := args["value"].(string)
	switch {
	case !core.IsFactType(factType):
		return fmt.Sprintf("Invalid fact_type: %q", factType)
	case key == "":
		return "Missing required argument: key"
	case value == "":
		return "Missing required argument: value"
	}

	fact, err := r.memory.Upsert(ctx, core.FactInput{
		FactType:   factType,
		Key:        key,
		Value:      value,
		Confidence: 1.0,
		Source:     core.SourceUserExplicit,
	})
	if err != nil {
		return fmt.Sprintf("Memory error: %v", err)
	}
	return fmt.Sprintf("Remembered: [%s] %s = %s", fact.FactType, fact.Key, fact.Value)
}
