// Package dao reads and writes page comments through the Notion api.
package dao

import (
	"context"
	"sort"
	"sync"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/log"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// userLookupConcurrency bounds parallel user lookups of one list
const userLookupConcurrency = 4

// NotionAPI is the part of the notion client the comments dao uses
type NotionAPI interface {
	ListComments(ctx context.Context, blockID string) ([]notion.Comment, error)
	CreateComment(ctx context.Context, pageID, content string) (*notion.Comment, error)
	RetrieveUser(ctx context.Context, userID string) (*notion.User, error)
}

// Comments dao
type Comments struct {
	api    NotionAPI
	logger logSDK.Logger
}

// New create new comments dao
func New(api NotionAPI, logger logSDK.Logger) (*Comments, error) {
	if api == nil {
		return nil, errors.New("notion api is required")
	}
	if logger == nil {
		logger = log.Logger.Named("comments_dao")
	}

	return &Comments{api: api, logger: logger}, nil
}

// ListComments returns the comments of a page in creation order together
// with the profiles of their authors.
//
// Bot authors and authors whose lookup fails are left out of the user table,
// those comments are shown with the guest identity.
func (d *Comments) ListComments(ctx context.Context, pageID string) (*model.CommentList, error) {
	comments, err := d.api.ListComments(ctx, pageID)
	if err != nil {
		return nil, errors.Wrap(err, "list notion comments")
	}

	list := &model.CommentList{
		Results: make([]model.CommentRecord, 0, len(comments)),
	}
	userIDs := map[string]struct{}{}
	for i := range comments {
		list.Results = append(list.Results, ConvertComment(&comments[i]))
		if uid := comments[i].CreatedBy.ID; uid != "" {
			userIDs[uid] = struct{}{}
		}
	}

	if list.Users, err = d.lookupUsers(ctx, userIDs); err != nil {
		return nil, errors.Wrap(err, "lookup comment authors")
	}

	return list, nil
}

// CreateComment posts content as a new comment on the page
func (d *Comments) CreateComment(ctx context.Context, pageID, content string) (*model.CommentRecord, error) {
	comment, err := d.api.CreateComment(ctx, pageID, content)
	if err != nil {
		return nil, errors.Wrap(err, "create notion comment")
	}

	record := ConvertComment(comment)
	return &record, nil
}

func (d *Comments) lookupUsers(ctx context.Context, ids map[string]struct{}) (map[string]model.UserReference, error) {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var (
		mu    sync.Mutex
		users = make(map[string]model.UserReference, len(sorted))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(userLookupConcurrency)
	for _, id := range sorted {
		g.Go(func() error {
			user, err := d.api.RetrieveUser(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return errors.Wrapf(ctxErr, "lookup user %s", id)
				}

				d.logger.Debug("skip unresolvable comment author",
					zap.String("user", id), zap.Error(err))
				return nil
			}
			if user.IsBot() {
				return nil
			}

			mu.Lock()
			users[id] = model.UserReference{
				ID:           user.ID,
				Name:         user.Name,
				ProfilePhoto: user.AvatarURL,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return users, nil
}

// ConvertComment maps a Notion comment to the record served by the api
func ConvertComment(c *notion.Comment) model.CommentRecord {
	record := model.CommentRecord{
		ID: c.ID,
		CreatedBy: model.AuthorRef{
			Object: c.CreatedBy.Object,
			ID:     c.CreatedBy.ID,
		},
		RichText:     make([]model.TextSegment, 0, len(c.RichText)),
		CreatedTime:  c.CreatedTime,
		DiscussionID: c.DiscussionID,
	}
	for _, rt := range c.RichText {
		seg := model.TextSegment{
			Type:      rt.Type,
			PlainText: rt.PlainText,
			Href:      rt.Href,
		}
		if a := rt.Annotations; a != nil {
			seg.Annotations = &model.Annotations{
				Bold:          a.Bold,
				Italic:        a.Italic,
				Strikethrough: a.Strikethrough,
				Underline:     a.Underline,
				Code:          a.Code,
			}
		}
		// a freshly created comment may only echo the text payload
		if seg.PlainText == "" && rt.Text != nil {
			seg.PlainText = rt.Text.Content
		}

		record.RichText = append(record.RichText, seg)
	}

	return record
}
