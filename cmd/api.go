package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-notion-blog/internal/web"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `http service of blog pages and their comments`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
		if gconfig.Shared.GetString("settings.notion.token") == "" {
			log.Logger.Panic("settings.notion.token is required")
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := web.Run(ctx, gconfig.Shared.GetString("listen")); err != nil {
			log.Logger.Panic("run server", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
