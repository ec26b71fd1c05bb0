package render

import (
	"strconv"
	"strings"

	"github.com/Laisky/laisky-notion-blog/library/notion"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `&lt;`,
	`>`, `&gt;`,
	`#`, `\#`,
)

// BlocksToMarkdown writes a block tree as markdown.
//
// Notion's first level headings become h2, so the page title stays the only h1.
// Blocks of unsupported types are skipped.
func BlocksToMarkdown(blocks []notion.Block) []byte {
	var sb strings.Builder
	writeBlocks(&sb, blocks, 0)
	return []byte(sb.String())
}

func writeBlocks(sb *strings.Builder, blocks []notion.Block, depth int) {
	indent := strings.Repeat("    ", depth)
	number := 0
	for i := range blocks {
		b := &blocks[i]
		if b.Type == "numbered_list_item" {
			number++
		} else {
			number = 0
		}

		switch b.Type {
		case "paragraph":
			if text := inline(b.RichText()); text != "" {
				sb.WriteString(indent + text + "\n\n")
			}
		case "heading_1":
			sb.WriteString("## " + inline(b.RichText()) + "\n\n")
		case "heading_2":
			sb.WriteString("### " + inline(b.RichText()) + "\n\n")
		case "heading_3":
			sb.WriteString("#### " + inline(b.RichText()) + "\n\n")
		case "bulleted_list_item":
			sb.WriteString(indent + "- " + inline(b.RichText()) + "\n")
		case "numbered_list_item":
			sb.WriteString(indent + strconv.Itoa(number) + ". " + inline(b.RichText()) + "\n")
		case "to_do":
			box := "[ ] "
			if b.ToDo.Checked {
				box = "[x] "
			}
			sb.WriteString(indent + "- " + box + inline(b.RichText()) + "\n")
		case "quote", "callout":
			sb.WriteString(indent + "> " + inline(b.RichText()) + "\n\n")
		case "toggle":
			sb.WriteString(indent + "**" + inline(b.RichText()) + "**\n\n")
		case "code":
			sb.WriteString("```" + b.Code.Language + "\n" + notion.PlainText(b.Code.RichText) + "\n```\n\n")
		case "image":
			if src := b.Image.Src(); src != "" {
				sb.WriteString(indent + "![" + escape(notion.PlainText(b.Image.Caption)) + "](" + src + ")\n\n")
			}
		case "bookmark":
			if b.Bookmark.URL != "" {
				sb.WriteString(indent + "[" + escape(b.Bookmark.URL) + "](" + b.Bookmark.URL + ")\n\n")
			}
		case "divider":
			sb.WriteString("---\n\n")
		default:
			continue
		}

		if len(b.Children) != 0 {
			writeBlocks(sb, b.Children, depth+1)
		}

		// a list ends with a blank line once the next block is of another kind
		if listTypes[b.Type] && (i+1 == len(blocks) || blocks[i+1].Type != b.Type) {
			sb.WriteString("\n")
		}
	}
}

var listTypes = map[string]bool{
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"to_do":              true,
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// inline writes rich text segments with their annotations
func inline(segments []notion.RichText) string {
	var sb strings.Builder
	for _, seg := range segments {
		text := seg.PlainText
		if text == "" && seg.Text != nil {
			text = seg.Text.Content
		}
		if text == "" {
			continue
		}

		// markdown emphasis must not start or end with a space
		lead := text[:len(text)-len(strings.TrimLeft(text, " "))]
		trail := text[len(strings.TrimRight(text, " ")):]
		core := strings.TrimSpace(text)
		if core == "" {
			sb.WriteString(text)
			continue
		}

		if a := seg.Annotations; a != nil && a.Code {
			core = "`" + strings.ReplaceAll(core, "`", "'") + "`"
		} else {
			core = escape(core)
			if a != nil {
				if a.Bold {
					core = "**" + core + "**"
				}
				if a.Italic {
					core = "*" + core + "*"
				}
				if a.Strikethrough {
					core = "~~" + core + "~~"
				}
			}
		}

		if href := seg.Href; href != "" {
			core = "[" + core + "](" + href + ")"
		}

		sb.WriteString(lead + core + trail)
	}

	return strings.ReplaceAll(sb.String(), "\n", "  \n")
}
