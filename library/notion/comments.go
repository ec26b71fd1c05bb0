package notion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Laisky/errors/v2"
)

// ListComments returns every unresolved comment on a page or block, oldest first
func (c *Client) ListComments(ctx context.Context, blockID string) ([]Comment, error) {
	id, err := NormalizeID(blockID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	comments, err := listAll(ctx, func(ctx context.Context, cursor string) (*listResponse[Comment], error) {
		query := url.Values{}
		query.Set("block_id", id)
		query.Set("page_size", strconv.Itoa(pageSize))
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}

		resp := new(listResponse[Comment])
		if err := c.do(ctx, http.MethodGet, "/comments", query, nil, resp); err != nil {
			return nil, err
		}

		return resp, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list comments of %s", id)
	}

	return comments, nil
}

type createCommentRequest struct {
	Parent   Parent     `json:"parent"`
	RichText []RichText `json:"rich_text"`
}

// CreateComment adds a top level comment with plain text content to a page
func (c *Client) CreateComment(ctx context.Context, pageID, content string) (*Comment, error) {
	id, err := NormalizeID(pageID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req := createCommentRequest{
		Parent:   Parent{PageID: id},
		RichText: []RichText{{Text: &TextContent{Content: content}}},
	}

	comment := new(Comment)
	if err = c.do(ctx, http.MethodPost, "/comments", nil, req, comment); err != nil {
		return nil, errors.Wrapf(err, "create comment on %s", id)
	}

	return comment, nil
}
