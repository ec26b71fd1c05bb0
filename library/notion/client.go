// Package notion is a small client of the Notion REST API.
//
// It covers the endpoints the blog needs: comments, users, pages,
// block children and database queries.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Laisky/laisky-notion-blog/library/log"
)

const (
	// maxPages stops pagination of a misbehaving cursor
	maxPages = 100
	pageSize = 100
	// maxErrBody limits how much of an error response is read
	maxErrBody = 64 << 10
)

// Client talks to the Notion API with one integration token.
//
// Requests are rate limited and run through a circuit breaker,
// so a struggling API fails fast instead of piling up callers.
type Client struct {
	opt     *option
	token   string
	httpcli *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  logSDK.Logger
}

// New creates a client authenticated by the integration token
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("notion token is required")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	c := &Client{
		opt:     opt,
		token:   token,
		httpcli: opt.httpcli,
		limiter: rate.NewLimiter(rate.Limit(opt.rate), opt.burst),
		logger:  opt.logger,
	}
	if c.logger == nil {
		c.logger = log.Logger.Named("notion")
	}
	if c.httpcli == nil {
		if c.httpcli, err = gutils.NewHTTPClient(
			gutils.WithHTTPClientTimeout(opt.timeout),
		); err != nil {
			return nil, errors.Wrap(err, "new http client")
		}
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notion",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c, nil
}

// do sends one request and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, method, path string,
	query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "wait for rate limiter")
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, method, path, query, body, out)
	})
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	return nil
}

func (c *Client) send(ctx context.Context, method, path string,
	query url.Values, body, out any) error {
	endpoint := c.opt.baseURL + path
	if len(query) != 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.opt.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startAt := time.Now()
	resp, err := c.httpcli.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer gutils.CloseWithLog(resp.Body, c.logger)

	c.logger.Debug("notion request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(startAt)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	if err != nil {
		return errors.Wrapf(err, "read error body of status %d", resp.StatusCode)
	}

	apiErr := &APIError{}
	if err = json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = string(raw)
	}
	apiErr.Status = resp.StatusCode

	return apiErr
}

// listAll follows next_cursor until the endpoint reports no more results
func listAll[T any](ctx context.Context,
	page func(ctx context.Context, cursor string) (*listResponse[T], error)) ([]T, error) {
	var (
		all    []T
		cursor string
	)
	for i := 0; i < maxPages; i++ {
		resp, err := page(ctx, cursor)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch page %d", i)
		}

		all = append(all, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return all, nil
		}
		cursor = *resp.NextCursor
	}

	return nil, errors.Errorf("more than %d pages of results", maxPages)
}
