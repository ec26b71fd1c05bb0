// Package cmd command line
package cmd

import (
	"context"
	"encoding/xml"
	"io"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gutils "github.com/Laisky/go-utils/v6"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-notion-blog/internal/web"
	commentsDao "github.com/Laisky/laisky-notion-blog/internal/web/comments/dao"
	pagesDao "github.com/Laisky/laisky-notion-blog/internal/web/pages/dao"
	commentsModel "github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	pagesModel "github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
	"github.com/Laisky/laisky-notion-blog/library/config"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

// DisqusXML represents the root element of Disqus export XML
type DisqusXML struct {
	XMLName    xml.Name         `xml:"disqus"`
	Categories []DisqusCategory `xml:"category"`
	Threads    []DisqusThread   `xml:"thread"`
	Posts      []DisqusPost     `xml:"post"`
}

// DisqusCategory represents a Disqus category element
type DisqusCategory struct {
	ID        string `xml:"id,attr"`
	Forum     string `xml:"forum"`
	Title     string `xml:"title"`
	IsDefault bool   `xml:"isDefault"`
}

// DisqusThread represents a Disqus thread element (corresponds to a Notion page)
type DisqusThread struct {
	// DsqID is the Disqus internal thread ID
	DsqID     string       `xml:"id,attr"`
	ID        string       `xml:"id"`
	Forum     string       `xml:"forum"`
	Link      string       `xml:"link"`
	Title     string       `xml:"title"`
	Message   string       `xml:"message"`
	CreatedAt string       `xml:"createdAt"`
	Author    DisqusAuthor `xml:"author"`
	IsClosed  bool         `xml:"isClosed"`
	IsDeleted bool         `xml:"isDeleted"`
}

// DisqusPost represents a Disqus post element (a comment)
type DisqusPost struct {
	// DsqID is the Disqus internal post ID
	DsqID     string           `xml:"id,attr"`
	ID        string           `xml:"id"`
	Message   string           `xml:"message"`
	CreatedAt string           `xml:"createdAt"`
	IsDeleted bool             `xml:"isDeleted"`
	IsSpam    bool             `xml:"isSpam"`
	Author    DisqusAuthor     `xml:"author"`
	Thread    DisqusThreadRef  `xml:"thread"`
	Parent    *DisqusParentRef `xml:"parent"`
}

// DisqusAuthor represents the author of a thread or post
type DisqusAuthor struct {
	Name        string `xml:"name"`
	IsAnonymous bool   `xml:"isAnonymous"`
	Username    string `xml:"username"`
}

// DisqusThreadRef references a thread by its Disqus ID
type DisqusThreadRef struct {
	DsqID string `xml:"id,attr"`
}

// DisqusParentRef references a parent post by its Disqus ID
type DisqusParentRef struct {
	DsqID string `xml:"id,attr"`
}

// maxImportedRunes is the longest text Notion accepts in one rich text segment
const maxImportedRunes = 2000

// importConfig holds the configuration for the import command
type importConfig struct {
	DisqusFile string
	DryRun     bool
	// Interval spaces out comment creation on top of the client rate limit
	Interval time.Duration
}

// pageResolver maps a post slug to its Notion page
type pageResolver interface {
	ResolvePageID(ctx context.Context, slugOrID string) (string, error)
}

// commentCreator posts a comment on a Notion page
type commentCreator interface {
	CreateComment(ctx context.Context, pageID, content string) (*commentsModel.CommentRecord, error)
}

var importCMD = &cobra.Command{
	Use:   "import",
	Short: "import data from external sources",
	Long:  `Import data from external sources into Notion`,
	Args:  gcmd.NoExtraArgs,
}

var importCommentsCMD = &cobra.Command{
	Use:   "comments",
	Short: "import comments from Disqus export",
	Long: `Import comments from a Disqus XML export file as Notion page comments.

This command reads the Disqus export XML file, parses threads (blog posts) and posts (comments),
and posts every comment onto the Notion page whose slug matches the last segment of the
Disqus thread link. Notion records the integration as the author, so the original author
name and date are kept as a prefix of the comment text.

Example usage:
  go run main.go import comments -c settings.yml --disqus_file=disqus_exported_data.xml --dry

The command will:
1. Parse the Disqus XML export file
2. Build a mapping of Disqus thread IDs to post slugs
3. Resolve every slug to a Notion page through the posts database
4. Post the comments of each page in chronological order`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := importConfig{
			DisqusFile: gconfig.Shared.GetString("disqus_file"),
			DryRun:     gconfig.Shared.GetBool("dry"),
			Interval:   time.Duration(config.IntOr("interval_ms", 400)) * time.Millisecond,
		}

		api, err := web.NewNotionClientFromConfig()
		if err != nil {
			log.Logger.Panic("new notion client", zap.Error(err))
		}
		resolver, err := pagesDao.New(api, pagesDao.Config{
			DatabaseID:   gconfig.Shared.GetString("settings.notion.database_id"),
			SlugProperty: config.StringOr("settings.notion.slug_property", "Slug"),
		}, log.Logger.Named("import_pages"))
		if err != nil {
			log.Logger.Panic("new pages dao", zap.Error(err))
		}
		creator, err := commentsDao.New(api, log.Logger.Named("import_comments"))
		if err != nil {
			log.Logger.Panic("new comments dao", zap.Error(err))
		}

		if err := runImportComments(ctx, cfg, resolver, creator); err != nil {
			log.Logger.Panic("import comments", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(importCMD)
	importCMD.AddCommand(importCommentsCMD)

	importCommentsCMD.Flags().String("disqus_file", "", "path to the Disqus XML export file (required)")
	importCommentsCMD.Flags().Int("interval_ms", 400, "pause between two created comments")
	if err := importCommentsCMD.MarkFlagRequired("disqus_file"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}
}

// runImportComments orchestrates the import of Disqus comments into Notion
func runImportComments(ctx context.Context, cfg importConfig,
	resolver pageResolver, creator commentCreator) error {
	logger := log.Logger.Named("import-comments")
	logger.Info("starting Disqus comments import",
		zap.String("disqus_file", cfg.DisqusFile),
		zap.Bool("dry_run", cfg.DryRun),
	)

	disqusData, err := parseDisqusXML(cfg.DisqusFile)
	if err != nil {
		return errors.Wrap(err, "parse Disqus XML")
	}

	logger.Info("parsed Disqus XML",
		zap.Int("threads", len(disqusData.Threads)),
		zap.Int("posts", len(disqusData.Posts)),
		zap.Int("categories", len(disqusData.Categories)),
	)

	threadToPostName := buildThreadToPostNameMap(disqusData.Threads)
	logger.Info("built thread to post name mapping",
		zap.Int("mappings", len(threadToPostName)),
	)

	postNameToPageID, err := lookupPages(ctx, resolver, threadToPostName)
	if err != nil {
		return errors.Wrap(err, "lookup pages")
	}
	logger.Info("found matching pages",
		zap.Int("matched", len(postNameToPageID)),
	)

	stats, err := importComments(ctx, creator, disqusData, threadToPostName, postNameToPageID, cfg)
	if err != nil {
		return errors.Wrap(err, "import comments")
	}

	logger.Info("import completed",
		zap.Int("imported", stats.Imported),
		zap.Int("skipped_deleted", stats.SkippedDeleted),
		zap.Int("skipped_spam", stats.SkippedSpam),
		zap.Int("skipped_no_post", stats.SkippedNoPost),
		zap.Int("skipped_empty", stats.SkippedEmpty),
	)

	return nil
}

// parseDisqusXML reads and parses a Disqus XML export file
func parseDisqusXML(filePath string) (*DisqusXML, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "open file %s", filePath)
	}
	defer gutils.CloseWithLog(file, log.Logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	var disqus DisqusXML
	if err := xml.Unmarshal(data, &disqus); err != nil {
		return nil, errors.Wrap(err, "unmarshal XML")
	}

	return &disqus, nil
}

// buildThreadToPostNameMap builds a mapping from Disqus thread ID to blog post name
func buildThreadToPostNameMap(threads []DisqusThread) map[string]string {
	result := make(map[string]string)

	for _, thread := range threads {
		if thread.IsDeleted {
			continue
		}

		postName := extractPostNameFromLink(thread.Link)
		if postName == "" {
			continue
		}

		result[thread.DsqID] = postName
	}

	return result
}

// extractPostNameFromLink extracts the post_name from a Disqus thread link
// Expected format: https://blog.laisky.com/p/{post_name}
func extractPostNameFromLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}

	// The path should be like /p/{post_name}
	pathParts := strings.Split(parsed.Path, "/")
	for i, part := range pathParts {
		if part == "p" && i+1 < len(pathParts) {
			// URL decode the post name
			postName, err := url.PathUnescape(pathParts[i+1])
			if err != nil {
				return pathParts[i+1]
			}
			return postName
		}
	}

	// Try to get the last path segment as fallback
	baseName := path.Base(parsed.Path)
	if baseName != "." && baseName != "/" {
		postName, err := url.PathUnescape(baseName)
		if err != nil {
			return baseName
		}
		return postName
	}

	return ""
}

// lookupPages resolves every distinct post name to its Notion page id.
// Names without a page are left out of the result.
func lookupPages(ctx context.Context, resolver pageResolver,
	threadToPostName map[string]string) (map[string]string, error) {
	postNames := make(map[string]struct{})
	for _, name := range threadToPostName {
		postNames[name] = struct{}{}
	}

	result := make(map[string]string)
	for name := range postNames {
		pageID, err := resolver.ResolvePageID(ctx, name)
		if err != nil {
			if errors.Is(err, pagesModel.ErrNotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "resolve post %q", name)
		}

		result[name] = pageID
	}

	return result, nil
}

// importStats tracks statistics for the import process
type importStats struct {
	Imported       int
	SkippedDeleted int
	SkippedSpam    int
	SkippedNoPost  int
	SkippedEmpty   int
}

// importComments posts Disqus comments onto their Notion pages, oldest first
func importComments(
	ctx context.Context,
	creator commentCreator,
	disqusData *DisqusXML,
	threadToPostName map[string]string,
	postNameToPageID map[string]string,
	cfg importConfig,
) (*importStats, error) {
	logger := log.Logger.Named("import-comments")
	stats := &importStats{}

	type pending struct {
		pageID    string
		content   string
		createdAt time.Time
		dsqID     string
	}
	var queue []pending

	for _, post := range disqusData.Posts {
		if post.IsDeleted {
			stats.SkippedDeleted++
			continue
		}

		if post.IsSpam {
			stats.SkippedSpam++
			continue
		}

		postName, ok := threadToPostName[post.Thread.DsqID]
		if !ok {
			stats.SkippedNoPost++
			logger.Debug("no post name mapping for thread",
				zap.String("thread_id", post.Thread.DsqID),
			)
			continue
		}

		pageID, ok := postNameToPageID[postName]
		if !ok {
			stats.SkippedNoPost++
			logger.Debug("no page found for post name",
				zap.String("post_name", postName),
			)
			continue
		}

		body := cleanHTMLContent(post.Message)
		if body == "" {
			stats.SkippedEmpty++
			continue
		}

		createdAt, err := parseDisqusTime(post.CreatedAt)
		if err != nil {
			logger.Warn("failed to parse created time, using current time",
				zap.String("time", post.CreatedAt),
				zap.Error(err),
			)
			createdAt = time.Now().UTC()
		}

		queue = append(queue, pending{
			pageID:    pageID,
			content:   formatImportedComment(post.Author, createdAt, body),
			createdAt: createdAt,
			dsqID:     post.DsqID,
		})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].createdAt.Before(queue[j].createdAt)
	})

	for i, c := range queue {
		if !cfg.DryRun {
			if i > 0 && cfg.Interval > 0 {
				select {
				case <-ctx.Done():
					return stats, errors.WithStack(ctx.Err())
				case <-time.After(cfg.Interval):
				}
			}

			if _, err := creator.CreateComment(ctx, c.pageID, c.content); err != nil {
				return stats, errors.Wrapf(err, "create comment %s", c.dsqID)
			}
		}

		stats.Imported++
		logger.Debug("imported comment",
			zap.String("disqus_id", c.dsqID),
			zap.String("page", c.pageID),
		)
	}

	return stats, nil
}

// formatImportedComment keeps the original author and date in the comment text
func formatImportedComment(author DisqusAuthor, createdAt time.Time, body string) string {
	name := strings.TrimSpace(author.Name)
	if name == "" || author.IsAnonymous {
		name = commentsModel.GuestIdentity.Name
	}

	content := name + " (" + createdAt.Format("2006-01-02") + "):\n" + body
	if runes := []rune(content); len(runes) > maxImportedRunes {
		content = string(runes[:maxImportedRunes])
	}

	return content
}

// parseDisqusTime parses a Disqus timestamp in ISO 8601 format
func parseDisqusTime(s string) (time.Time, error) {
	// Disqus uses format: 2015-03-25T14:10:41Z
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "parse time %s", s)
		}
	}
	return t.UTC(), nil
}

// cleanHTMLContent strips HTML tags and CDATA wrappers from content
func cleanHTMLContent(content string) string {
	// The content is typically wrapped in CDATA and contains HTML
	// Remove common HTML tags and clean up whitespace
	content = strings.TrimSpace(content)

	// Remove basic HTML paragraph tags
	content = strings.ReplaceAll(content, "<p>", "")
	content = strings.ReplaceAll(content, "</p>", "\n")
	content = strings.ReplaceAll(content, "<br>", "\n")
	content = strings.ReplaceAll(content, "<br/>", "\n")
	content = strings.ReplaceAll(content, "<br />", "\n")

	// Trim extra whitespace
	content = strings.TrimSpace(content)

	return content
}
