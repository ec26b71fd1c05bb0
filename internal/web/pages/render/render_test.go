package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/library/notion"
)

func text(s string) []notion.RichText {
	return []notion.RichText{{PlainText: s}}
}

func TestMarkdownToHTML(t *testing.T) {
	md := []byte("```python\na = 2\n```")
	expect := `<pre><code class="language-python">a = 2
</code></pre>`
	html := strings.TrimSpace(MarkdownToHTML(md, false))
	require.Equal(t, expect, html, "markdown to HTML conversion failed")

	md = []byte("## abc def")
	expect = `<h2 id="header-abc-def">Ⅰ、abc def</h2>`
	html = strings.TrimSpace(MarkdownToHTML(md, true))
	require.Equal(t, expect, html, "heading anchor mismatch")

	html = MarkdownToHTML([]byte("<script>alert(1)</script>\n\n[x](javascript:alert)"), false)
	require.NotContains(t, html, "<script>")
	require.NotContains(t, html, "javascript:")
}

func TestMarkdownToHTMLUniqueAnchors(t *testing.T) {
	html := MarkdownToHTML([]byte("## Intro\n\ntext\n\n## Intro\n"), false)
	require.Contains(t, html, `<h2 id="header-intro">Intro</h2>`)
	require.Contains(t, html, `<h2 id="header-intro-1">Intro</h2>`)
}

func TestExtractMenu(t *testing.T) {
	cnt := ExtractMenu(`<h2 id="abc">abc def</h2>ffweifj<h3 id="lev 3">333</h3>j3ij23lrij`)
	expect := `<nav id="post-menu" class="h-100 flex-column align-items-stretch"><nav class="nav nav-pills flex-column"><a class="nav-link" href="#abc">abc def</a><nav class="nav nav-pills flex-column"><a class="nav-link ms-3 my-1" href="#lev 3">333</a></nav></nav></nav>`
	require.Equal(t, expect, cnt, "ExtractMenu output mismatch")
}

func TestBlocksToMarkdown(t *testing.T) {
	blocks := []notion.Block{
		{Type: "heading_1", Heading1: &notion.TextBlock{RichText: text("Title")}},
		{Type: "paragraph", Paragraph: &notion.TextBlock{RichText: []notion.RichText{
			{PlainText: "plain "},
			{PlainText: "bold", Annotations: &notion.Annotations{Bold: true}},
			{PlainText: " and "},
			{PlainText: "link", Href: "https://example.com"},
		}}},
		{Type: "bulleted_list_item", Bulleted: &notion.TextBlock{RichText: text("one")},
			HasChildren: true, Children: []notion.Block{
				{Type: "bulleted_list_item", Bulleted: &notion.TextBlock{RichText: text("nested")}},
			}},
		{Type: "bulleted_list_item", Bulleted: &notion.TextBlock{RichText: text("two")}},
		{Type: "numbered_list_item", Numbered: &notion.TextBlock{RichText: text("first")}},
		{Type: "numbered_list_item", Numbered: &notion.TextBlock{RichText: text("second")}},
		{Type: "to_do", ToDo: &notion.ToDoBlock{RichText: text("done"), Checked: true}},
		{Type: "code", Code: &notion.CodeBlock{Language: "go", RichText: text("x := 1")}},
		{Type: "divider"},
		{Type: "unsupported"},
	}

	md := string(BlocksToMarkdown(blocks))
	require.Contains(t, md, "## Title\n\n")
	require.Contains(t, md, "plain **bold** and [link](https://example.com)\n\n")
	require.Contains(t, md, "- one\n    - nested\n")
	require.Contains(t, md, "- two\n\n")
	require.Contains(t, md, "1. first\n2. second\n\n")
	require.Contains(t, md, "- [x] done\n")
	require.Contains(t, md, "```go\nx := 1\n```\n\n")
	require.Contains(t, md, "---\n\n")
}

func TestMarkdownRender(t *testing.T) {
	r := NewMarkdown(false)
	out, err := r.Render("page", []notion.Block{
		{Type: "heading_1", Heading1: &notion.TextBlock{RichText: text("Getting started")}},
		{Type: "heading_2", Heading2: &notion.TextBlock{RichText: text("Install")}},
		{Type: "paragraph", Paragraph: &notion.TextBlock{RichText: text("1 < 2 *really*")}},
	})
	require.NoError(t, err)
	require.Contains(t, string(out.HTML), `<h2 id="header-getting-started">Getting started</h2>`)
	require.Contains(t, string(out.HTML), `<h3 id="header-install">Install</h3>`)
	require.Contains(t, string(out.HTML), `1 &lt; 2 *really*`)
	require.Contains(t, string(out.Menu), `href="#header-install"`)

	_, err = r.Render("", nil)
	require.Error(t, err)
}
