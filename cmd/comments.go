package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/comments/service"
	"github.com/Laisky/laisky-notion-blog/library/commentapi"
)

// commentAPI is the part of the comment api client used by the comments commands
type commentAPI interface {
	ListComments(ctx context.Context, pageID string) (*model.CommentList, error)
	CreateComment(ctx context.Context, pageID, content string) (*model.CommentRecord, error)
}

var commentsCMD = &cobra.Command{
	Use:   "comments",
	Short: "Read or write the comments of a post through the blog api",
	Args:  gcmd.NoExtraArgs,
}

var listCommentsCMD = &cobra.Command{
	Use:   "list",
	Short: "Print the comments of a post",
	Args:  gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, pageID, err := commentAPIFromFlags(cmd)
		if err != nil {
			return err
		}

		return listComments(cmd.Context(), cmd.OutOrStdout(), cli, pageID, time.Now())
	},
}

var postCommentCMD = &cobra.Command{
	Use:   "post",
	Short: "Post one comment to a post",
	Args:  gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, pageID, err := commentAPIFromFlags(cmd)
		if err != nil {
			return err
		}

		return postComment(cmd.Context(), cmd.OutOrStdout(), cli, pageID,
			gconfig.Shared.GetString("content"))
	},
}

func init() {
	rootCMD.AddCommand(commentsCMD)
	commentsCMD.AddCommand(listCommentsCMD, postCommentCMD)

	commentsCMD.PersistentFlags().String("api", "http://localhost:8080", "base url of the blog api")
	commentsCMD.PersistentFlags().String("page", "", "notion page id of the post")
	postCommentCMD.Flags().String("content", "", "comment text, read from stdin when empty")
}

func commentAPIFromFlags(cmd *cobra.Command) (*commentapi.Client, string, error) {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return nil, "", errors.Wrap(err, "bind flags")
	}

	pageID := strings.TrimSpace(gconfig.Shared.GetString("page"))
	if pageID == "" {
		return nil, "", errors.New("--page is required")
	}

	cli, err := commentapi.New(gconfig.Shared.GetString("api"))
	if err != nil {
		return nil, "", errors.Wrap(err, "new comment api client")
	}

	return cli, pageID, nil
}

func listComments(ctx context.Context, w io.Writer, api commentAPI, pageID string, now time.Time) error {
	list, err := api.ListComments(ctx, pageID)
	if err != nil {
		return errors.Wrapf(err, "list comments of %q", pageID)
	}

	views := service.DeriveList(list, now)
	if len(views) == 0 {
		_, err = fmt.Fprintln(w, "no comments")
		return errors.WithStack(err)
	}

	for _, v := range views {
		role := "guest"
		if v.IsOwner {
			role = "owner"
		}

		if _, err = fmt.Fprintf(w, "[%s] %s (%s, %s)\n", v.ID, v.User.Name, role, v.CreatedAt); err != nil {
			return errors.WithStack(err)
		}
		for _, line := range v.Lines {
			if _, err = fmt.Fprintf(w, "    %s\n", line); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return nil
}

func postComment(ctx context.Context, w io.Writer, api commentAPI, pageID, content string) error {
	if content == "" {
		raw, err := io.ReadAll(io.LimitReader(os.Stdin, 64<<10))
		if err != nil {
			return errors.Wrap(err, "read content from stdin")
		}
		content = string(raw)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("comment content is empty")
	}

	record, err := api.CreateComment(ctx, pageID, strings.TrimSpace(content))
	if err != nil {
		return errors.Wrapf(err, "post comment to %q", pageID)
	}

	_, err = fmt.Fprintf(w, "posted %s\n", record.ID)
	return errors.WithStack(err)
}
