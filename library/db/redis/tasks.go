package redis

import (
	"context"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
)

// PushCommentEvent appends evt to the comment event queue
func (db *DB) PushCommentEvent(ctx context.Context, evt *model.CommentEvent) error {
	if evt == nil {
		return errors.New("comment event is nil")
	}
	if evt.ID == "" {
		evt.ID = gutils.UUID7()
	}

	if err := db.db.RPush(ctx, KeyTaskCommentEvents, []interface{}{evt}); err != nil {
		return errors.Wrap(err, "rpush")
	}

	return nil
}
