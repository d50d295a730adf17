package conv

import (
	"strings"
	"unicode/utf8"
)

// Chunk splits text into pieces of at most maxLen bytes. It prefers line
// breaks in the latter two thirds of a piece, never cuts inside an HTML tag
// when it can avoid it, and never splits a UTF-8 sequence.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		} else if open := strings.LastIndexByte(text[:maxLen], '<'); open > strings.LastIndexByte(text[:maxLen], '>') && open > 0 {
			cut = open
		}
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}

		if piece := strings.TrimSpace(text[:cut]); piece != "" {
			chunks = append(chunks, piece)
		}
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
