package tutor

import (
	"regexp"
	"strings"
)

// allowedTags is the Telegram HTML subset tutor replies may use.
var allowedTags = []string{
	"<b>", "</b>",
	"<i>", "</i>",
	"<code>", "</code>",
	"<pre>", "</pre>",
}

// entity matches the character references Telegram accepts.
var entity = regexp.MustCompile(`^&(lt|gt|amp|quot|#[0-9]+|#x[0-9a-fA-F]+);`)

// sanitizeReply escapes every '<', '>' and '&' that is not part of an
// allowed tag or a valid entity, so generated Python such as "x < 5" is
// delivered as text instead of breaking the HTML parse mode. Closing tags
// without a matching open tag are escaped and tags left open are closed.
func sanitizeReply(s string) string {
	var (
		sb   strings.Builder
		open []string
	)
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		switch s[i] {
		case '<':
			tag := strings.ToLower(matchTag(s[i:]))
			if tag == "" {
				sb.WriteString("&lt;")
				break
			}
			if name, closing := strings.CutPrefix(tag, "</"); closing {
				if len(open) == 0 || open[len(open)-1] != name {
					sb.WriteString("&lt;")
					break
				}
				open = open[:len(open)-1]
			} else {
				open = append(open, tag[1:])
			}
			sb.WriteString(tag)
			i += len(tag)
			continue
		case '>':
			sb.WriteString("&gt;")
		case '&':
			if ref := entity.FindString(s[i:]); ref != "" {
				sb.WriteString(ref)
				i += len(ref)
				continue
			}
			sb.WriteString("&amp;")
		default:
			sb.WriteByte(s[i])
		}
		i++
	}
	for j := len(open) - 1; j >= 0; j-- {
		sb.WriteString("</" + open[j])
	}
	return sb.String()
}

func matchTag(s string) string {
	for _, tag := range allowedTags {
		if len(s) >= len(tag) && strings.EqualFold(s[:len(tag)], tag) {
			return s[:len(tag)]
		}
	}
	return ""
}
