// Package render turns a page's content tree into html.
package render

import (
	"html/template"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// Renderer produces the markup of a page from its id and content tree.
// The tree must not be modified.
type Renderer interface {
	Render(id string, blocks []notion.Block) (*model.Rendered, error)
}

// Markdown renders through markdown, headings become anchors of the table of contents
type Markdown struct {
	// NumberHeadings prefixes headings with their position, e.g. "Ⅱ、"
	NumberHeadings bool
}

// NewMarkdown creates the default renderer
func NewMarkdown(numberHeadings bool) *Markdown {
	return &Markdown{NumberHeadings: numberHeadings}
}

// Render implements Renderer
func (r *Markdown) Render(id string, blocks []notion.Block) (*model.Rendered, error) {
	if id == "" {
		return nil, errors.New("empty page id")
	}

	html := MarkdownToHTML(BlocksToMarkdown(blocks), r.NumberHeadings)
	return &model.Rendered{
		// the markdown renderer drops raw html and unsafe links
		HTML: template.HTML(html), //nolint:gosec
		Menu: template.HTML(ExtractMenu(html)), //nolint:gosec
	}, nil
}
