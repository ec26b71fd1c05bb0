package controller

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	commentsModel "github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
)

const testPageID = "1a2b3c4d-0000-4000-8000-000000000001"

var ginModeOnce sync.Once

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

type fakePages struct {
	doc *model.Document
	err error

	refreshed  []string
	refreshErr error
}

func (f *fakePages) Refresh(_ context.Context, slugOrID string) error {
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.refreshed = append(f.refreshed, slugOrID)
	return nil
}

func (f *fakePages) Detail(context.Context, string) (*model.Document, error) {
	return f.doc, f.err
}

func (f *fakePages) Assemble(_ context.Context, _ string, site model.Site) (*model.PageView, error) {
	if f.err != nil || f.doc == nil {
		return nil, f.err
	}

	return &model.PageView{
		Site:     site,
		Document: f.doc,
		Content:  &model.Rendered{HTML: template.HTML("<p>body</p>")},
		Comments: []commentsModel.CommentViewModel{{
			ID:        "c1",
			User:      commentsModel.GuestIdentity,
			Text:      "<b>hi</b>",
			Lines:     []string{"<b>hi</b>"},
			CreatedAt: "3 minutes ago",
		}},
	}, nil
}

type fakeCreator struct {
	pageIDs  []string
	contents []string
	err      error
}

func (f *fakeCreator) Create(_ context.Context, pageID, content, _ string) (*commentsModel.CommentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.pageIDs = append(f.pageIDs, pageID)
	f.contents = append(f.contents, content)
	return &commentsModel.CommentRecord{ID: "new"}, nil
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func newRouter(t *testing.T, pages Service, creator CommentCreator, limiter Limiter) *gin.Engine {
	t.Helper()
	setupGinTestMode()

	ctrl, err := New(pages, creator, limiter, func(*http.Request) model.Site {
		return model.Site{ID: "blog", Title: "Blog", Scheme: "dark"}
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(gmw.NewLoggerMiddleware(gmw.WithLogger(logSDK.Shared.Named("test_pages"))))
	ctrl.Register(router)
	return router
}

func postForm(router http.Handler, path, content string) *httptest.ResponseRecorder {
	form := url.Values{"content": {content}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestShowRendersPage verifies the page template, theme class and escaped comments.
func TestShowRendersPage(t *testing.T) {
	t.Parallel()

	router := newRouter(t, &fakePages{doc: &model.Document{ID: testPageID, Title: "Hello"}}, &fakeCreator{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `<html lang="en" class="dark">`)
	require.Contains(t, body, "<title>Hello | Blog</title>")
	require.Contains(t, body, "<p>body</p>")
	require.Contains(t, body, "&lt;b&gt;hi&lt;/b&gt;")
	require.Contains(t, body, `class="comment guest"`)
	require.Contains(t, body, `action="/posts/`+testPageID+`/comments"`)
}

// TestShowMissingPageRendersNothing verifies an absent document yields an empty response.
func TestShowMissingPageRendersNothing(t *testing.T) {
	t.Parallel()

	router := newRouter(t, &fakePages{}, &fakeCreator{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/missing", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())
}

// TestShowUpstreamFailure verifies load errors map to a gateway status.
func TestShowUpstreamFailure(t *testing.T) {
	t.Parallel()

	router := newRouter(t, &fakePages{err: errors.New("notion down")}, &fakeCreator{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/hello", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
}

// TestCommentSubmit verifies form submissions.
func TestCommentSubmit(t *testing.T) {
	t.Parallel()

	pages := &fakePages{doc: &model.Document{ID: testPageID, Title: "Hello"}}

	t.Run("whitespace is a no-op", func(t *testing.T) {
		creator := &fakeCreator{}
		w := postForm(newRouter(t, pages, creator, nil), "/posts/hello/comments", "  \n\t")
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "/posts/hello#comments", w.Header().Get("Location"))
		require.Empty(t, creator.contents)
	})

	t.Run("created on the resolved page", func(t *testing.T) {
		creator := &fakeCreator{}
		w := postForm(newRouter(t, pages, creator, nil), "/posts/hello/comments", "nice post")
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, []string{testPageID}, creator.pageIDs)
		require.Equal(t, []string{"nice post"}, creator.contents)
	})

	t.Run("throttled keeps the draft", func(t *testing.T) {
		creator := &fakeCreator{}
		w := postForm(newRouter(t, pages, creator, denyAll{}), "/posts/hello/comments", "again")
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		require.Contains(t, w.Body.String(), ">again</textarea>")
		require.Empty(t, creator.contents)
	})

	t.Run("invalid content is a bad request", func(t *testing.T) {
		creator := &fakeCreator{err: errors.Wrap(commentsModel.ErrInvalidContent, "too long")}
		w := postForm(newRouter(t, pages, creator, nil), "/posts/hello/comments", "x")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown page", func(t *testing.T) {
		creator := &fakeCreator{}
		w := postForm(newRouter(t, &fakePages{}, creator, nil), "/posts/missing/comments", "hi")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Empty(t, creator.contents)
	})
}

// TestRefreshDropsCachedPage verifies the refresh route invalidates the page and redirects back to it.
func TestRefreshDropsCachedPage(t *testing.T) {
	t.Parallel()

	t.Run("refreshed", func(t *testing.T) {
		pages := &fakePages{}
		router := newRouter(t, pages, &fakeCreator{}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts/hello-world/refresh", nil))
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "/posts/hello-world", w.Header().Get("Location"))
		require.Equal(t, []string{"hello-world"}, pages.refreshed)
	})

	t.Run("throttled", func(t *testing.T) {
		pages := &fakePages{}
		router := newRouter(t, pages, &fakeCreator{}, denyAll{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts/hello-world/refresh", nil))
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		require.Empty(t, pages.refreshed)
	})

	t.Run("backend failure", func(t *testing.T) {
		pages := &fakePages{refreshErr: errors.New("redis down")}
		router := newRouter(t, pages, &fakeCreator{}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts/hello-world/refresh", nil))
		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}
