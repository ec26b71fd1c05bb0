// Package controller serves rendered blog pages.
package controller

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	commentsController "github.com/Laisky/laisky-notion-blog/internal/web/comments/controller"
	commentsModel "github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service assembles pages
type Service interface {
	Assemble(ctx context.Context, slugOrID string, site model.Site) (*model.PageView, error)
	Detail(ctx context.Context, slugOrID string) (*model.Document, error)
	Refresh(ctx context.Context, slugOrID string) error
}

// CommentCreator posts comments
type CommentCreator interface {
	Create(ctx context.Context, pageID, content, clientIP string) (*commentsModel.CommentRecord, error)
}

// Limiter decides whether a client may submit a comment now
type Limiter interface {
	Allow(client string) bool
}

// SiteResolver returns the site serving a request
type SiteResolver func(r *http.Request) model.Site

// Pages controller
type Pages struct {
	svc       Service
	comments  CommentCreator
	limiter   Limiter
	site      SiteResolver
	templates *template.Template
}

// New create new pages controller, limiter may be nil
func New(svc Service, comments CommentCreator, limiter Limiter, site SiteResolver) (*Pages, error) {
	if svc == nil || comments == nil {
		return nil, errors.New("pages and comments services are required")
	}
	if site == nil {
		site = func(*http.Request) model.Site { return model.Site{Scheme: "light"} }
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"schemeClass":   schemeClass,
		"commentAction": commentAction,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	return &Pages{
		svc:       svc,
		comments:  comments,
		limiter:   limiter,
		site:      site,
		templates: tmpl,
	}, nil
}

// Register mounts the page routes on r
func (p *Pages) Register(r gin.IRouter) {
	r.GET("/posts/:slug", p.Show)
	r.POST("/posts/:slug/comments", p.Comment)
	r.POST("/posts/:slug/refresh", p.Refresh)
}

// Show renders one page, an unknown page renders nothing
func (p *Pages) Show(ctx *gin.Context) {
	view, err := p.svc.Assemble(ctx, ctx.Param("slug"), p.site(ctx.Request))
	if err != nil {
		gmw.GetLogger(ctx).Error("assemble page",
			zap.String("slug", ctx.Param("slug")), zap.Error(err))
		ctx.AbortWithStatus(commentsController.StatusOf(err))
		return
	}
	if view == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	p.render(ctx, http.StatusOK, view)
}

// Comment handles the comment form of a page
func (p *Pages) Comment(ctx *gin.Context) {
	slugOrID := ctx.Param("slug")
	content := ctx.PostForm("content")
	back := "/posts/" + url.PathEscape(slugOrID) + "#comments"

	// whitespace only drafts are dropped silently
	if strings.TrimSpace(content) == "" {
		ctx.Redirect(http.StatusSeeOther, back)
		return
	}

	doc, err := p.svc.Detail(ctx, slugOrID)
	if err != nil {
		gmw.GetLogger(ctx).Error("load page for comment",
			zap.String("slug", slugOrID), zap.Error(err))
		ctx.AbortWithStatus(commentsController.StatusOf(err))
		return
	}
	if doc == nil {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}

	if p.limiter != nil && !p.limiter.Allow(ctx.ClientIP()) {
		p.rerender(ctx, slugOrID, content, http.StatusTooManyRequests)
		return
	}

	if _, err = p.comments.Create(ctx, doc.ID, content, ctx.ClientIP()); err != nil {
		status := commentsController.StatusOf(err)
		gmw.GetLogger(ctx).Warn("submit comment",
			zap.String("page", doc.ID), zap.Int("status", status), zap.Error(err))
		p.rerender(ctx, slugOrID, content, status)
		return
	}

	ctx.Redirect(http.StatusSeeOther, back)
}

// Refresh drops the cached copy of a page after it was edited in notion
func (p *Pages) Refresh(ctx *gin.Context) {
	slugOrID := ctx.Param("slug")
	if p.limiter != nil && !p.limiter.Allow(ctx.ClientIP()) {
		ctx.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	if err := p.svc.Refresh(ctx, slugOrID); err != nil {
		gmw.GetLogger(ctx).Error("refresh page",
			zap.String("slug", slugOrID), zap.Error(err))
		ctx.AbortWithStatus(commentsController.StatusOf(err))
		return
	}

	gmw.GetLogger(ctx).Info("page refreshed", zap.String("slug", slugOrID))
	ctx.Redirect(http.StatusSeeOther, "/posts/"+url.PathEscape(slugOrID))
}

// rerender shows the page again with the rejected draft kept in the form
func (p *Pages) rerender(ctx *gin.Context, slugOrID, draft string, status int) {
	view, err := p.svc.Assemble(ctx, slugOrID, p.site(ctx.Request))
	if err != nil || view == nil {
		ctx.AbortWithStatus(status)
		return
	}

	view.Draft = draft
	p.render(ctx, status, view)
}

func (p *Pages) render(ctx *gin.Context, status int, view *model.PageView) {
	ctx.Status(status)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := p.templates.ExecuteTemplate(ctx.Writer, "page.html", view); err != nil {
		gmw.GetLogger(ctx).Error("render template", zap.Error(err))
	}
}

func schemeClass(scheme string) string {
	if scheme == "dark" {
		return "dark"
	}

	return "light"
}

func commentAction(pageID string) string {
	return "/posts/" + url.PathEscape(pageID) + "/comments"
}
