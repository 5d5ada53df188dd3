// Package server wires the dreamsync server together: it opens the document
// store and notifier named by the configuration, builds the services, and
// runs the gRPC server and the HTTP gateway until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/config"
	"github.com/dmitrijs2005/dreamsync/internal/server/httpapi"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/pictures"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/dreamsync/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	rm       repomanager.RepositoryManager
	notifier notify.Notifier
	services gs.Services
}

// NewLogger builds the process logger from the logging settings.
func NewLogger(c *config.Config) (logging.Logger, error) {
	return logging.New(logging.Options{
		Backend: c.LogBackend,
		Format:  c.LogFormat,
		Level:   c.LogLevel,
	}, os.Stdout)
}

// OpenStore opens the configured document store.
func OpenStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	return repomanager.New(ctx, repomanager.Options{
		Backend:                  c.Store,
		DatabaseDSN:              c.DatabaseDSN,
		FirestoreProjectID:       c.FirestoreProjectID,
		FirestoreCredentialsFile: c.FirestoreCredentialsFile,
	})
}

func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	if c.Notifier == "redis" {
		return notify.NewRedisNotifier(ctx, notify.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Channel:  c.RedisChannel,
		}, logger)
	}
	return notify.NewHub(), nil
}

// newPictureStore returns nil when no bucket is configured, which disables
// profile picture uploads.
func newPictureStore(c *config.Config) services.PictureStore {
	if c.S3Bucket == "" {
		return nil
	}
	return pictures.New(pictures.Options{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	rm, err := OpenStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	n, err := newNotifier(ctx, c, logger)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	svc := gs.Services{
		Auth: services.NewAuthService(rm, services.AuthConfig{
			SecretKey:                    c.SecretKey,
			AccessTokenValidityDuration:  c.AccessTokenValidityDuration,
			RefreshTokenValidityDuration: c.RefreshTokenValidityDuration,
		}, logger),
		Dreams: services.NewDreamService(rm, n, logger),
		Users:  services.NewUserService(rm, n, newPictureStore(c), c.SearchPageSize, logger),
		Social: services.NewSocialService(rm, n, logger),
	}

	return &App{config: c, logger: logger, rm: rm, notifier: n, services: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then releases the notifier and the store.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.Store, "notifier", app.config.Notifier)

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey)
		return s.Run(gctx)
	})

	if app.config.EndpointAddrHTTP != "" {
		g.Go(func() error {
			s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.services.Dreams, app.services.Users, app.config.SecretKey)
			return s.Run(gctx)
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	if cerr := app.notifier.Close(); cerr != nil {
		app.logger.Warn(ctx, "notifier close failed", "error", cerr)
	}
	if cerr := app.rm.Close(); cerr != nil {
		app.logger.Warn(ctx, "store close failed", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
