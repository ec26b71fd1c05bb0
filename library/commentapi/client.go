// Package commentapi is an http client of the blog's comment api.
package commentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

const defaultTimeout = 30 * time.Second

// StatusError is a non-2xx answer of the api
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("comment api [%d]: %s", e.Status, e.Message)
}

// Client is an http client of the comment api
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client of the api served at baseURL, e.g. https://blog.example.com
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base url must be http or https: %q", baseURL)
	}

	httpcli, err := gutils.NewHTTPClient(gutils.WithHTTPClientTimeout(defaultTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "new http client")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpcli,
	}, nil
}

// ListComments returns the comments of a page with the user table
func (c *Client) ListComments(ctx context.Context, pageID string) (*model.CommentList, error) {
	list := new(model.CommentList)
	if err := c.do(ctx, http.MethodGet, commentsPath(pageID), nil, list); err != nil {
		return nil, errors.Wrap(err, "list comments")
	}

	return list, nil
}

// CreateComment posts content as a new comment on the page
func (c *Client) CreateComment(ctx context.Context, pageID, content string) (*model.CommentRecord, error) {
	var resp struct {
		Comment *model.CommentRecord `json:"comment"`
	}
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, commentsPath(pageID), body, &resp); err != nil {
		return nil, errors.Wrap(err, "create comment")
	}
	if resp.Comment == nil {
		return nil, errors.New("empty create response")
	}

	return resp.Comment, nil
}

func commentsPath(pageID string) string {
	return "/api/comments/" + url.PathEscape(pageID)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer gutils.CloseWithLog(resp.Body, log.Logger)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}

	return nil
}
