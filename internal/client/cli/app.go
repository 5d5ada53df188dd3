package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/client/config"
	"github.com/dmitrijs2005/dreamsync/internal/client/remote"
	"github.com/dmitrijs2005/dreamsync/internal/client/report"
	"github.com/dmitrijs2005/dreamsync/internal/client/services"
	"github.com/dmitrijs2005/dreamsync/internal/client/store"
	"github.com/dmitrijs2005/dreamsync/internal/filex"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
)

var _ services.Remote = (*remote.GRPCClient)(nil)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is the state of one interactive client session.
type App struct {
	config *config.Config
	logger logging.Logger

	repos    *store.Repositories
	closer   io.Closer
	auth     *services.AuthService
	dreams   *services.DreamSyncService
	social   *services.SocialGraphService
	users    *services.UserDirectory
	reports  *report.Sender
	searcher *services.Searcher
	contacts services.ContactSource

	mu       sync.Mutex
	userID   string
	username string
	Mode     Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store and connects to the server. A local store
// that cannot be opened or migrated is fatal.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	path, err := filex.DataFile(c.DataDir, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	repos, err := store.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}

	client, err := remote.NewGRPCClient(c.ServerEndpointAddr, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	return newApp(c, logger, repos, client, client, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, logger logging.Logger, repos *store.Repositories, r services.Remote, closer io.Closer, in io.Reader, out io.Writer) *App {
	httpClient := &http.Client{Timeout: c.RequestTimeout}
	social := services.NewSocialGraphService(r, r, c.SearchPageSize, logger)
	a := &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		closer:   closer,
		auth:     services.NewAuthService(r, repos.Preferences, logger),
		dreams:   services.NewDreamSyncService(repos.Dreams, r, r, logger),
		social:   social,
		users:    services.NewUserDirectory(r, httpClient, logger),
		reports:  report.NewSender(c.ReportWebhookURL, httpClient, logger),
		searcher: services.NewSearcher(social.SearchUsernames, c.SearchDelay),
		reader:   bufio.NewReader(in),
		out:      out,
	}
	a.contacts = &FileContacts{path: c.ContactsFile, prefs: repos.Preferences}
	return a
}

// Close releases the connection and the local store.
func (a *App) Close() error {
	a.searcher.Close()
	if a.closer != nil {
		_ = a.closer.Close()
	}
	return a.repos.Close()
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID != ""
}

func (a *App) currentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID
}

func (a *App) setUser(id, username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userID, a.username = id, username
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.username != "" {
		s = a.username + " "
	} else if a.userID != "" {
		s = "signed in "
	}
	s += string(a.Mode)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// withTimeout bounds the remote calls of one command.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// StartOnlineStatusWatcher probes the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pctx)
			cancel()
			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}
		case <-ctx.Done():
			return
		}
	}
}

// resume restores a saved session, if any.
func (a *App) resume(ctx context.Context) {
	id, err := a.auth.Restore(ctx)
	if err != nil {
		a.logger.Error(ctx, "restore session", "error", err)
		return
	}
	if id != "" {
		a.setUser(id, a.auth.Username(ctx))
	}
}

// Run restores the previous session, starts the connectivity watcher and
// serves commands from the input until EOF or exit.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.resume(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "dreamsync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
