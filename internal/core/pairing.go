package core

import "fmt"

// ValidatePairing checks that every assistant message carrying tool_use blocks
// is immediately followed by a user message with exactly one tool_result per
// tool_use id. A trailing assistant message with pending tool calls is allowed
// only when allowPending is set.
func ValidatePairing(messages []Message, allowPending bool) error {
	for i, msg := range messages {
		if msg.Role != RoleAssistant {
			continue
		}
		uses := msg.Content.ToolUses()
		if len(uses) == 0 {
			continue
		}

		if i+1 >= len(messages) {
			if allowPending {
				return nil
			}
			return fmt.Errorf("message %d: %d tool_use block(s) without results", i, len(uses))
		}

		next := messages[i+1]
		if next.Role != RoleUser {
			return fmt.Errorf("message %d: tool_use followed by %s message", i, next.Role)
		}

		results := make(map[string]int)
		for _, r := range next.Content.ToolResults() {
			results[r.ToolUseID]++
		}
		for _, u := range uses {
			switch results[u.ID] {
			case 1:
				delete(results, u.ID)
			case 0:
				return fmt.Errorf("message %d: no tool_result for tool_use %s", i, u.ID)
			default:
				return fmt.Errorf("message %d: duplicate tool_result for tool_use %s", i, u.ID)
			}
		}
		for id := range results {
			return fmt.Errorf("message %d: tool_result %s has no matching tool_use", i+1, id)
		}
	}
	return nil
}
