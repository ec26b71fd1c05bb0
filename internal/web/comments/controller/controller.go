// Package controller exposes the comment api over http.
package controller

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/notion"
	"github.com/Laisky/laisky-notion-blog/library/throttle"
)

// maxRequestBody caps the size of a create request
const maxRequestBody = 64 << 10

// Service is the comment service the controller serves
type Service interface {
	List(ctx context.Context, pageID string) (*model.CommentList, error)
	ViewModels(ctx context.Context, pageID string) ([]model.CommentViewModel, error)
	Create(ctx context.Context, pageID, content, clientIP string) (*model.CommentRecord, error)
}

// Limiter decides whether a client may submit a comment now
type Limiter interface {
	Allow(client string) bool
}

// Comments controller
type Comments struct {
	svc     Service
	limiter Limiter
}

// New create new comments controller, limiter may be nil
func New(svc Service, limiter Limiter) *Comments {
	return &Comments{svc: svc, limiter: limiter}
}

// Register mounts the comment api on r
func (c *Comments) Register(r gin.IRouter) {
	grp := r.Group("/api/comments")
	grp.GET("/:page_id", c.List)
	grp.GET("/:page_id/view", c.View)
	grp.POST("/:page_id", c.Create)
}

// CreateRequest is the body of a create request
type CreateRequest struct {
	Content string `json:"content"`
}

// List returns the raw comment list with the user table
func (c *Comments) List(ctx *gin.Context) {
	list, err := c.svc.List(ctx, ctx.Param("page_id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, list)
}

// View returns the comments as view models
func (c *Comments) View(ctx *gin.Context) {
	views, err := c.svc.ViewModels(ctx, ctx.Param("page_id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": views})
}

// Create posts a new comment on the page
func (c *Comments) Create(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxRequestBody)

	req := new(CreateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if c.limiter != nil && !c.limiter.Allow(ctx.ClientIP()) {
		abortWithError(ctx, throttle.ErrThrottled)
		return
	}

	record, err := c.svc.Create(ctx, ctx.Param("page_id"), req.Content, ctx.ClientIP())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"comment": record})
}

// StatusOf maps a comment error to its http status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyContent),
		errors.Is(err, model.ErrInvalidContent),
		errors.Is(err, model.ErrInvalidPageID):
		return http.StatusBadRequest
	case errors.Is(err, throttle.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, notion.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func abortWithError(ctx *gin.Context, err error) {
	status := StatusOf(err)
	logger := gmw.GetLogger(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("comment request failed", zap.Error(err), zap.Int("status", status))
	} else {
		logger.Debug("comment request rejected", zap.Error(err), zap.Int("status", status))
	}

	msg := http.StatusText(status)
	if status == http.StatusBadRequest {
		msg = err.Error()
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": msg})
}
