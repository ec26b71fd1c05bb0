// Package model defines the comment records served by the comment api
package model

import "time"

// AuthorRef points at the user who wrote a comment
type AuthorRef struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
}

// Annotations are the style flags of a text segment
type Annotations struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Code          bool `json:"code,omitempty"`
}

// TextSegment is one segment of a comment body
type TextSegment struct {
	Type        string       `json:"type,omitempty"`
	PlainText   string       `json:"plain_text"`
	Href        string       `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// CommentRecord is a comment as stored on the page.
// Records are never modified after they are fetched.
type CommentRecord struct {
	ID string `json:"id"`
	// CreatedBy references an entry of CommentList.Users
	CreatedBy    AuthorRef     `json:"created_by"`
	RichText     []TextSegment `json:"rich_text"`
	CreatedTime  time.Time     `json:"created_time"`
	DiscussionID string        `json:"discussion_id,omitempty"`
}

// CommentList is the comments of one page in creation order,
// with the authors that could be resolved.
type CommentList struct {
	Results []CommentRecord          `json:"results"`
	Users   map[string]UserReference `json:"users"`
}

// CommentEvent is queued after a comment is created
type CommentEvent struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	CommentID string    `json:"comment_id"`
	Content   string    `json:"content"`
	ClientIP  string    `json:"client_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
