package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/server"
	"github.com/dmitrijs2005/dreamsync/internal/server/auth"
	"github.com/dmitrijs2005/dreamsync/internal/server/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dreamsync-server",
		Short:        "Dream journal sync and social graph server",
		SilenceUsage: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

// serveCmd runs the gRPC server and HTTP gateway until interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC server and the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := server.NewLogger(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := server.NewApp(ctx, cfg, logger)
			if err != nil {
				logger.Error(ctx, "init failed", "error", err)
				return err
			}
			return app.Run(ctx)
		},
	}
}

// migrateCmd applies pending schema migrations and exits.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending store migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rm, err := server.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer rm.Close()

			if err := rm.RunMigrations(ctx); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// tokenCmd mints an access token for a user id, for local debugging.
func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print an access token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenValidityDuration
			}
			token, err := auth.GenerateToken(args[0], []byte(cfg.SecretKey), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token validity (defaults to the access token TTL)")
	return cmd
}

