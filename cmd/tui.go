package cmd

import (
	"context"
	"fmt"
	"os"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-notion-blog/cmd/tui"
	"github.com/Laisky/laisky-notion-blog/internal/thread"
	"github.com/Laisky/laisky-notion-blog/library/commentapi"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Browse and write the comments of a post in the terminal",
	Long: `Launch an interactive Terminal User Interface (TUI) showing the comment
thread of one post, served by a running blog api.

Owner comments are aligned right, guest comments left.

Example:
  go run entrypoints/main.go tui --api https://blog.laisky.com --page <page id>

Keyboard shortcuts:
  ctrl+s      Send the draft
  ctrl+r      Refresh the comments
  esc         Quit`,
	Args: gcmd.NoExtraArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flags: %v\n", err)
			os.Exit(1)
		}

		if err := runTUI(cmd.Context(),
			gconfig.Shared.GetString("api"),
			gconfig.Shared.GetString("page"),
			gconfig.Shared.GetString("scheme"),
		); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
	tuiCMD.Flags().String("api", "http://localhost:8080", "base url of the blog api")
	tuiCMD.Flags().String("page", "", "notion page id of the post")
	tuiCMD.Flags().String("scheme", tui.SchemeLight, "color scheme, `light/dark`")
}

// runTUI starts the interactive comment thread and returns any start/run error.
func runTUI(ctx context.Context, api, pageID, scheme string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	th, err := newRemoteThread(api, pageID)
	if err != nil {
		return errors.WithStack(err)
	}

	p := tea.NewProgram(
		tui.NewModel(ctx, th, scheme),
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return errors.WithStack(err)
}

// newRemoteThread builds the thread of pageID backed by the comment api at api
func newRemoteThread(api, pageID string) (*thread.Thread, error) {
	cli, err := commentapi.New(api)
	if err != nil {
		return nil, errors.Wrap(err, "new comment api client")
	}

	th, err := thread.New(pageID, cli,
		thread.WithLogger(log.Logger.Named("tui")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new comment thread")
	}

	return th, nil
}
