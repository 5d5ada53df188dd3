package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dreamsync/internal/client/cli"
	"github.com/dmitrijs2005/dreamsync/internal/client/config"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dreamsync",
		Short:        "Interactive dream journal with cloud sync",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Backend: cfg.LogBackend,
				Format:  cfg.LogFormat,
				Level:   cfg.LogLevel,
			}, os.Stderr)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := cli.NewApp(ctx, cfg, logger)
			if err != nil {
				logger.Error(ctx, "init failed", "error", err)
				return err
			}
			defer app.Close()

			app.Run(ctx)
			return nil
		},
	}
	config.RegisterFlags(root.Flags())
	return root
}
