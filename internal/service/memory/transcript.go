package memory

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/sazed/internal/core"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	return tk
}

// countTokens uses cl100k_base when it can be loaded, else a four
// characters per token estimate.
func countTokens(text string) int {
	if text == "" {
		return 0
	}
	if enc := getTokenizer(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len([]rune(text)) + 3) / 4
}

// transcriptLines renders messages as "ROLE: text" lines, noting tool calls
// as "ROLE [called name]". Tool results are left out.
func transcriptLines(messages []core.Message) []string {
	var lines []string
	for _, msg := range messages {
		role := strings.ToUpper(string(msg.Role))

		if msg.Content.IsPlain() {
			lines = append(lines, role+": "+msg.Content.Text())
			continue
		}

		for _, b := range msg.Content.Blocks() {
			switch b.Type {
			case core.BlockText:
				lines = append(lines, role+": "+b.Text)
			case core.BlockToolUse:
				lines = append(lines, role+" [called "+b.ToolUse.Name+"]")
			}
		}
	}
	return lines
}

// FormatTranscript joins the transcript lines with blank lines between them.
func FormatTranscript(messages []core.Message) string {
	return strings.Join(transcriptLines(messages), "\n\n")
}

// budgetTranscript keeps the newest lines whose combined size fits within
// maxTokens. A non-positive budget keeps everything.
func budgetTranscript(lines []string, maxTokens int, count func(string) int) (string, bool) {
	if maxTokens <= 0 {
		return strings.Join(lines, "\n\n"), false
	}

	total := 0
	start := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		n := count(lines[i])
		if total+n > maxTokens && start < len(lines) {
			break
		}
		total += n
		start = i
	}
	return strings.Join(lines[start:], "\n\n"), start > 0
}

func formatExistingFacts(facts []core.Fact) string {
	if len(facts) == 0 {
		return "(none)"
	}
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = "- [" + f.FactType + "] " + f.Key + ": " + f.Value
	}
	return strings.Join(lines, "\n")
}
