package model

// CommentViewModel is a comment ready for display.
// It is derived from a CommentRecord on every render and never stored.
type CommentViewModel struct {
	ID   string        `json:"id"`
	User UserReference `json:"user"`
	Text string        `json:"text"`
	// Lines is Text split on line breaks
	Lines []string `json:"lines"`
	// IsOwner is true when the author resolved to a known user
	IsOwner bool `json:"is_owner"`
	// CreatedAt is the age of the comment relative to the render time, e.g. "3 minutes ago"
	CreatedAt string `json:"created_at"`
}
