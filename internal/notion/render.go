package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// renderBlock turns one block into a line of markdown-flavoured plain text.
// Unknown block types render as empty and are dropped.
func renderBlock(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return plainText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return "# " + plainText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return "## " + plainText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return "### " + plainText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return "- " + plainText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return "1. " + plainText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		if b.ToDo.Checked {
			return "[x] " + plainText(b.ToDo.RichText)
		}
		return "[ ] " + plainText(b.ToDo.RichText)
	case *notionapi.ToggleBlock:
		return plainText(b.Toggle.RichText)
	case *notionapi.QuoteBlock:
		return "> " + plainText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return plainText(b.Callout.RichText)
	case *notionapi.CodeBlock:
		return "```" + b.Code.Language + "\n" + plainText(b.Code.RichText) + "\n```"
	default:
		return ""
	}
}

func plainText(richText []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range richText {
		b.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(b.String())
}
