package notion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Laisky/errors/v2"
)

// RetrievePage returns the page properties, not its content
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	id, err := NormalizeID(pageID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	page := new(Page)
	if err = c.do(ctx, http.MethodGet, "/pages/"+id, nil, nil, page); err != nil {
		return nil, errors.Wrapf(err, "retrieve page %s", id)
	}

	return page, nil
}

// ListBlockChildren returns the direct children of a page or block.
// Nested children are not fetched.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	id, err := NormalizeID(blockID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	blocks, err := listAll(ctx, func(ctx context.Context, cursor string) (*listResponse[Block], error) {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(pageSize))
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}

		resp := new(listResponse[Block])
		if err := c.do(ctx, http.MethodGet, "/blocks/"+id+"/children", query, nil, resp); err != nil {
			return nil, err
		}

		return resp, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list children of %s", id)
	}

	return blocks, nil
}
