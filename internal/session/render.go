package session

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in messages is omitted, not passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// RenderHTML renders a transcript as HTML, one article per message, with
// message content treated as Markdown.
func RenderHTML(messages []Message) (string, error) {
	var buf bytes.Buffer
	for _, m := range messages {
		fmt.Fprintf(&buf, "<article class=\"message message-%s\" id=\"msg-%s\">\n",
			html.EscapeString(string(m.Role)), html.EscapeString(m.ID))
		if err := markdown.Convert([]byte(m.Content), &buf); err != nil {
			return "", fmt.Errorf("render message %s: %w", m.ID, err)
		}
		buf.WriteString("</article>\n")
	}
	return buf.String(), nil
}
