// Package conv renders model answers for chat transports.
package conv

import (
	"io"
	"strconv"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToTelegramHTML renders Markdown into the HTML subset Telegram
// accepts. Headings become bold lines and list items get bullet or number
// prefixes, since Telegram has no tags for either.
func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags:          htmlFlags,
		RenderNodeHook: telegramHook,
	})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

func telegramHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			io.WriteString(w, "<b>")
		} else {
			io.WriteString(w, "</b>\n")
		}
		return ast.GoToNext, true
	case *ast.ListItem:
		if entering {
			io.WriteString(w, listPrefix(n))
		} else {
			io.WriteString(w, "\n")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

func listPrefix(item *ast.ListItem) string {
	if item.ListFlags&ast.ListTypeOrdered == 0 {
		return "• "
	}
	parent := item.GetParent()
	if parent == nil {
		return "1. "
	}
	start := 1
	if list, ok := parent.(*ast.List); ok && list.Start > 0 {
		start = list.Start
	}
	for i, child := range parent.GetChildren() {
		if child == ast.Node(item) {
			return strconv.Itoa(start+i) + ". "
		}
	}
	return strconv.Itoa(start) + ". "
}
