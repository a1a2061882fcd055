package console

import (
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/net/html"

	"github.com/abhisek/pysis/internal/ui/theme"
)

// Render turns a tutor reply written in the Telegram HTML subset (<b>, <i>,
// <code>, escaped "\n") into styled terminal text. Unknown tags are dropped
// and their text kept.
func Render(reply string) string {
	reply = strings.ReplaceAll(reply, `\n`, "\n")
	doc, err := html.Parse(strings.NewReader(reply))
	if err != nil {
		return reply
	}

	var sb strings.Builder
	var traverse func(n *html.Node, style lipgloss.Style)
	traverse = func(n *html.Node, style lipgloss.Style) {
		switch n.Type {
		case html.TextNode:
			// Style line by line so a styled span never swallows a newline.
			for i, line := range strings.Split(n.Data, "\n") {
				if i > 0 {
					sb.WriteByte('\n')
				}
				if line != "" {
					sb.WriteString(style.Render(line))
				}
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "b", "strong":
				style = style.Bold(true)
			case "i", "em":
				style = style.Italic(true)
			case "code", "pre":
				style = theme.Code.Inherit(style)
			case "br":
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c, style)
		}
	}
	traverse(doc, theme.Body)
	return sb.String()
}
