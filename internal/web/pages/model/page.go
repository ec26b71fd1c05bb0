// Package model defines the documents served by the page routes
package model

import (
	"html/template"
	"time"

	commentsModel "github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// Document is a page with its full content tree
type Document struct {
	// ID is the Notion page id, the comment thread is keyed by it too
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	URL            string         `json:"url,omitempty"`
	LastEditedTime time.Time      `json:"last_edited_time"`
	Blocks         []notion.Block `json:"blocks"`
}

// Rendered is the markup produced for a document
type Rendered struct {
	HTML template.HTML
	// Menu is the table of contents built from the headings
	Menu template.HTML
}

// Site is the presentation settings of the host serving the page
type Site struct {
	ID     string
	Title  string
	Scheme string
}

// PageView is everything the page template needs
type PageView struct {
	Site     Site
	Document *Document
	Content  *Rendered
	Comments []commentsModel.CommentViewModel
	// Draft is echoed back into the comment form
	Draft string
}
