package memory

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
)

const inferredConfidence = 0.7

type candidateFact struct {
	FactType   string   `json:"fact_type"`
	Key        string   `json:"key"`
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence"`
}

// parseJSONList decodes a JSON array from model output, tolerating a
// surrounding code fence. Anything that is not an array yields nil.
func parseJSONList(text string) []json.RawMessage {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		} else {
			text = ""
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil
	}
	return items
}

// parseFacts turns raw list items into upsert inputs, skipping entries
// without a valid type, key or value.
func parseFacts(items []json.RawMessage, source string) []core.FactInput {
	var facts []core.FactInput
	for _, raw := range items {
		var c candidateFact
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		if !core.IsFactType(c.FactType) || c.Key == "" || c.Value == "" {
			continue
		}

		confidence := inferredConfidence
		if c.Confidence != nil {
			confidence = *c.Confidence
		}
		if confidence < 0 || confidence > 1 {
			continue
		}

		facts = append(facts, core.FactInput{
			FactType:   c.FactType,
			Key:        c.Key,
			Value:      c.Value,
			Confidence: confidence,
			Source:     source,
		})
	}
	return facts
}
