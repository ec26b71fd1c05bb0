package notion

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// TextFilter matches a text property
type TextFilter struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

// CheckboxFilter matches a checkbox property
type CheckboxFilter struct {
	Equals bool `json:"equals"`
}

// Filter is a single property filter of a database query
type Filter struct {
	Property string          `json:"property"`
	RichText *TextFilter     `json:"rich_text,omitempty"`
	Title    *TextFilter     `json:"title,omitempty"`
	Checkbox *CheckboxFilter `json:"checkbox,omitempty"`
}

// Sort orders a database query
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// DatabaseQuery is the body of a database query
type DatabaseQuery struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryDatabase returns every page of the database matching query
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query DatabaseQuery) ([]Page, error) {
	id, err := NormalizeID(databaseID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pages, err := listAll(ctx, func(ctx context.Context, cursor string) (*listResponse[Page], error) {
		body := query
		body.StartCursor = cursor
		if body.PageSize == 0 {
			body.PageSize = pageSize
		}

		resp := new(listResponse[Page])
		if err := c.do(ctx, http.MethodPost, "/databases/"+id+"/query", nil, body, resp); err != nil {
			return nil, err
		}

		return resp, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "query database %s", id)
	}

	return pages, nil
}
