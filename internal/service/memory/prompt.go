package memory

import (
	"os"
	"strings"
	"time"

	"github.com/sandevgo/sazed/internal/core"
)

const defaultInstructions = `## Behavior
- Be direct and concise. No preamble, no filler.
- Always use tools to get real data. Never answer from assumption when a tool can verify.
- Match response length to the question: short for simple answers, structured only when it genuinely helps.
- When a tool fails, say so clearly and suggest what to try instead.
- When the user asks you to remember something, call memory_update immediately.

## Tool guidance
- Tasks: call get_task_lists first to get valid list IDs before creating, reading, or updating tasks.
- Drive files: call list_files to find a file ID before reading, updating, or deleting.
- Knowledge vs web: search the knowledge base first for anything about the user's personal context, projects, or notes. Use web_search when the knowledge base has nothing useful or the topic requires current information.
- Email: use list_emails with filters before fetching full message content.`

// SysPrompt renders the system prompt for the turn loop. A SYSTEM.md file at
// systemPath replaces the built-in behavior and tool guidance sections.
type SysPrompt struct {
	systemPath string
	now        func() time.Time
}

func NewSysPrompt(systemPath string) *SysPrompt {
	return &SysPrompt{
		systemPath: systemPath,
		now:        time.Now,
	}
}

func (p *SysPrompt) Build(facts []core.Fact) string {
	instructions := defaultInstructions
	if p.systemPath != "" {
		if content, err := os.ReadFile(p.systemPath); err == nil && strings.TrimSpace(string(content)) != "" {
			instructions = strings.TrimSpace(string(content))
		}
	}

	var b strings.Builder
	b.WriteString("You are Sazed, a personal AI assistant.\n")
	b.WriteString("Today is " + p.now().Format("Monday, January 02, 2006") + ".\n\n")
	b.WriteString(instructions)
	b.WriteString("\n\n## Known facts about the user\n")
	b.WriteString(FormatForPrompt(facts))
	b.WriteString("\n")
	return b.String()
}

// FormatForPrompt groups facts by type in first-seen order. Each group gets a
// bold capitalized header and one "- key: value" line per fact.
func FormatForPrompt(facts []core.Fact) string {
	if len(facts) == 0 {
		return "(None yet)"
	}

	var order []string
	grouped := make(map[string][]core.Fact)
	for _, f := range facts {
		if _, seen := grouped[f.FactType]; !seen {
			order = append(order, f.FactType)
		}
		grouped[f.FactType] = append(grouped[f.FactType], f)
	}

	var lines []string
	for _, factType := range order {
		lines = append(lines, "**"+capitalize(factType)+"**")
		for _, f := range grouped[factType] {
			lines = append(lines, "- "+f.Key+": "+f.Value)
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
