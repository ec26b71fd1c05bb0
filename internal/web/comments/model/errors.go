package model

import "github.com/Laisky/errors/v2"

var (
	// ErrEmptyContent is returned for a comment with no text after trimming
	ErrEmptyContent = errors.New("comment content is empty")
	// ErrInvalidContent is returned for a comment that is too long or not plain text
	ErrInvalidContent = errors.New("invalid comment content")
	// ErrInvalidPageID is returned when the page id is not a Notion id
	ErrInvalidPageID = errors.New("invalid page id")
)
