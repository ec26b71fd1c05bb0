package service

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
)

// Derive maps comment records to view models in their original order.
//
// Authors missing from users are shown as model.GuestIdentity and a record
// without text gets model.FallbackText. Ages are relative to now, so callers
// derive again on every render instead of keeping the result.
func Derive(records []model.CommentRecord,
	users map[string]model.UserReference, now time.Time) []model.CommentViewModel {
	views := make([]model.CommentViewModel, 0, len(records))
	for i := range records {
		views = append(views, deriveOne(&records[i], users, now))
	}

	return views
}

// DeriveList is Derive over a whole comment list, nil yields no comments
func DeriveList(list *model.CommentList, now time.Time) []model.CommentViewModel {
	if list == nil {
		return []model.CommentViewModel{}
	}

	return Derive(list.Results, list.Users, now)
}

func deriveOne(record *model.CommentRecord,
	users map[string]model.UserReference, now time.Time) model.CommentViewModel {
	user, ok := users[record.CreatedBy.ID]
	if !ok {
		user = model.GuestIdentity
	}

	text := model.FallbackText
	if len(record.RichText) != 0 && record.RichText[0].PlainText != "" {
		text = record.RichText[0].PlainText
	}

	return model.CommentViewModel{
		ID:        record.ID,
		User:      user,
		Text:      text,
		Lines:     strings.Split(text, "\n"),
		IsOwner:   !user.IsGuest(),
		CreatedAt: humanize.RelTime(record.CreatedTime, now, "ago", "from now"),
	}
}
