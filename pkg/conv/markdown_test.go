package conv

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	cases := map[string]struct {
		md   string
		want string
	}{
		"nothing":        {"", ""},
		"plain sentence": {"Your next meeting is at 10:00.", "Your next meeting is at 10:00.\n"},
		"emphasis": {
			"**Tomorrow** is *busy*, ~~Friday~~ is free",
			"<strong>Tomorrow</strong> is <em>busy</em>, <del>Friday</del> is free\n",
		},
		"inline code":  {"Run `sazed serve`", "Run <code>sazed serve</code>\n"},
		"fenced block": {"```sh\nsazed chat\n```", "<pre><code class=\"language-sh\">sazed chat\n</code></pre>\n"},
		"quote":        {"> from your notes", "<blockquote>\nfrom your notes\n</blockquote>\n"},
		"link keeps only href": {
			"[agenda](https://example.com/agenda)",
			"<a href=\"https://example.com/agenda\">agenda</a>\n",
		},
		"heading becomes bold line": {"## Tasks due today", "<b>Tasks due today</b>\n"},
		"script removed":            {"<script>alert(1)</script>", "\n"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, MarkdownToTelegramHTML([]byte(tc.md)))
		})
	}
}

func TestMarkdownToTelegramHTML_Lists(t *testing.T) {
	got := MarkdownToTelegramHTML([]byte("- one\n- two\n"))
	assert.Contains(t, got, "• one\n• two\n")
	assert.NotContains(t, got, "<li>")

	got = MarkdownToTelegramHTML([]byte("1. first\n2. second\n"))
	assert.Contains(t, got, "1. first\n2. second\n")
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"short"}, Chunk("short", 10))

	text := strings.Repeat("line of text\n", 10)
	chunks := Chunk(text, 40)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 40)
		assert.False(t, strings.HasSuffix(c, "\n"))
	}
	assert.Equal(t, strings.Count(text, "line"), strings.Count(strings.Join(chunks, "\n"), "line"))
}

func TestChunk_RuneAndTagBoundaries(t *testing.T) {
	text := strings.Repeat("ж", 30)
	for _, c := range Chunk(text, 7) {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), 7)
	}

	chunks := Chunk("aaaaaaaaaa<b>bold</b>", 12)
	assert.Equal(t, "aaaaaaaaaa", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "<b>"))
}
