// Package dao loads blog pages from a Notion database.
package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gosimple/slug"

	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
	"github.com/Laisky/laisky-notion-blog/library/log"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// NotionAPI is the part of the notion client the pages dao uses
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, query notion.DatabaseQuery) ([]notion.Page, error)
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
	ListBlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// Config locates the posts database
type Config struct {
	// DatabaseID is the database holding the posts, slugs only resolve when it is set
	DatabaseID string
	// SlugProperty is the rich text property holding a post's slug
	SlugProperty string
	// MaxDepth bounds how deep nested blocks are fetched, 1 loads only top level blocks
	MaxDepth int
}

// Pages dao
type Pages struct {
	api    NotionAPI
	cfg    Config
	logger logSDK.Logger
}

// New create new pages dao
func New(api NotionAPI, cfg Config, logger logSDK.Logger) (*Pages, error) {
	if api == nil {
		return nil, errors.New("notion api is required")
	}
	if cfg.SlugProperty == "" {
		cfg.SlugProperty = "Slug"
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if logger == nil {
		logger = log.Logger.Named("pages_dao")
	}

	return &Pages{api: api, cfg: cfg, logger: logger}, nil
}

// ResolvePageID maps a slug or a page id to a page id.
//
// A valid Notion id is returned as is, anything else is looked up
// in the slug property of the posts database.
func (d *Pages) ResolvePageID(ctx context.Context, slugOrID string) (string, error) {
	if id, err := notion.NormalizeID(slugOrID); err == nil {
		return id, nil
	}

	key := slug.Make(slugOrID)
	if key == "" || d.cfg.DatabaseID == "" {
		return "", errors.Wrapf(model.ErrNotFound, "slug %q", slugOrID)
	}

	pages, err := d.api.QueryDatabase(ctx, d.cfg.DatabaseID, notion.DatabaseQuery{
		Filter: &notion.Filter{
			Property: d.cfg.SlugProperty,
			RichText: &notion.TextFilter{Equals: key},
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "query slug %q", key)
	}

	for _, p := range pages {
		if !p.Archived {
			return p.ID, nil
		}
	}

	return "", errors.Wrapf(model.ErrNotFound, "slug %q", key)
}

// LoadDocument loads a page's title and its content tree
func (d *Pages) LoadDocument(ctx context.Context, pageID string) (*model.Document, error) {
	page, err := d.api.RetrievePage(ctx, pageID)
	if err != nil {
		if errors.Is(err, notion.ErrNotFound) {
			return nil, errors.Wrapf(model.ErrNotFound, "page %s", pageID)
		}
		return nil, errors.Wrapf(err, "retrieve page %s", pageID)
	}
	if page.Archived {
		return nil, errors.Wrapf(model.ErrNotFound, "page %s is archived", pageID)
	}

	blocks, err := d.loadBlocks(ctx, page.ID, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "load content of %s", page.ID)
	}

	return &model.Document{
		ID:             page.ID,
		Title:          page.Title(),
		URL:            page.URL,
		LastEditedTime: page.LastEditedTime,
		Blocks:         blocks,
	}, nil
}

func (d *Pages) loadBlocks(ctx context.Context, blockID string, depth int) ([]notion.Block, error) {
	blocks, err := d.api.ListBlockChildren(ctx, blockID)
	if err != nil {
		return nil, errors.Wrapf(err, "list children of %s", blockID)
	}

	for i := range blocks {
		if !blocks[i].HasChildren {
			continue
		}
		if depth >= d.cfg.MaxDepth {
			d.logger.Debug("skip blocks below max depth",
				zap.String("block", blocks[i].ID), zap.Int("depth", depth))
			continue
		}

		if blocks[i].Children, err = d.loadBlocks(ctx, blocks[i].ID, depth+1); err != nil {
			return nil, err
		}
	}

	return blocks, nil
}
