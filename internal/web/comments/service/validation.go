package service

import (
	"strings"
	"unicode/utf8"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// maxCommentContentLength caps the length of comment content in runes,
// Notion rejects longer text segments.
const maxCommentContentLength = 2000

// sanitizeCommentContent trims content and checks it can be posted as a single text segment.
func sanitizeCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", model.ErrEmptyContent
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", errors.Wrap(model.ErrInvalidContent, "content contains invalid null byte")
	}
	if !utf8.ValidString(trimmed) {
		return "", errors.Wrap(model.ErrInvalidContent, "content is not valid utf-8")
	}
	if n := utf8.RuneCountInString(trimmed); n > maxCommentContentLength {
		return "", errors.Wrapf(model.ErrInvalidContent,
			"content length %d exceeds max length %d", n, maxCommentContentLength)
	}

	return trimmed, nil
}

// sanitizePageID returns the canonical form of a Notion page id
func sanitizePageID(pageID string) (string, error) {
	id, err := notion.NormalizeID(pageID)
	if err != nil {
		return "", errors.Wrap(model.ErrInvalidPageID, err.Error())
	}

	return id, nil
}
