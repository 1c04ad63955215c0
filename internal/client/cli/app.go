package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/client"
	"github.com/dmitrijs2005/moviekeeper/internal/client/config"
	"github.com/dmitrijs2005/moviekeeper/internal/client/lifecycle"
	"github.com/dmitrijs2005/moviekeeper/internal/client/localstore"
	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/client/services"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/cryptox"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config     *config.Config
	log        logging.Logger
	store      *localstore.Store
	remote     client.Client
	dispatcher *services.Dispatcher
	users      services.UserSyncService
	favorites  services.FavoritesSyncService
	tracker    *lifecycle.Tracker
	feed       *lifecycle.Feed
	trackerEnd chan struct{}

	mu       sync.Mutex
	identity *models.Identity
	Mode     Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store, unlocks the field key, connects the remote
// store and starts the session tracker.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	guard, err := openGuard(c)
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(ctx, c.DBPath)
	if err != nil {
		return nil, err
	}

	remote, err := newRemote(ctx, c)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := newApp(c, log, store, remote, guard, bufio.NewReader(os.Stdin), os.Stdout)
	if err := a.tracker.Start(ctx); err != nil {
		a.log.Warn(ctx, "could not close previous session", "err", err)
	}
	a.startTracker(ctx)
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, store *localstore.Store, remote client.Client, guard services.Cipher, r *bufio.Reader, w io.Writer) *App {
	d := services.NewDispatcher(log, c.RemoteTimeout)
	users := services.NewUserSyncService(store, remote, guard, d, log, c.RemoteTimeout)

	return &App{
		config:     c,
		log:        log.With("module", "cli"),
		store:      store,
		remote:     remote,
		dispatcher: d,
		users:      users,
		favorites:  services.NewFavoritesSyncService(store, remote, d, log, c.RemoteTimeout),
		tracker:    lifecycle.NewTracker(users, store.Metadata(), log, lifecycle.WithDebounce(c.LogoutDebounce)),
		feed:       lifecycle.NewFeed(16),
		trackerEnd: make(chan struct{}),
		Mode:       ModeOffline,
		reader:     r,
		out:        w,
	}
}

func (a *App) startTracker(ctx context.Context) {
	go func() {
		defer close(a.trackerEnd)
		if err := a.tracker.Run(context.WithoutCancel(ctx), a.feed); err != nil {
			a.log.Error(ctx, "session tracker stopped", "err", err)
		}
	}()
}

func openGuard(c *config.Config) (*cryptox.Guard, error) {
	var passphrase []byte
	if c.KeySource == cryptox.KeySourcePassphrase {
		var err error
		if passphrase, err = GetPassphrase(os.Stdout); err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		defer common.WipeByteArray(passphrase)
	}

	src, err := cryptox.NewKeySource(c.KeySource, c.KeyFile, passphrase)
	if err != nil {
		return nil, err
	}
	key, err := src.Key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	return cryptox.NewGuard(key)
}

// Close records the end of the session, waits for pending remote writes and
// releases the stores.
func (a *App) Close(ctx context.Context) {
	if id := a.currentUser(); id != "" {
		a.feed.Publish(lifecycle.Event{Kind: lifecycle.ProcessDestroyed, UserID: id})
	}
	a.feed.Close()
	<-a.trackerEnd

	a.dispatcher.Close()
	if err := a.remote.Close(); err != nil {
		a.log.Warn(ctx, "close remote", "err", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "close local store", "err", err)
	}
}

func (a *App) currentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.identity == nil {
		return ""
	}
	return a.identity.UserID
}

func (a *App) isSignedIn() bool {
	return a.currentUser() != ""
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "remote store status changed", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// Run starts the REPL and closes the app when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// StartOnlineStatusWatcher pings the remote store every interval and flips
// Mode accordingly, until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

func (a *App) getStatus() string {
	s := ""
	if id := a.currentUser(); id != "" {
		s = id + " "
	}
	s += string(a.mode())
	return fmt.Sprintf("(%s)", s)
}

// Root prints the banner, starts the connectivity watcher and runs the REPL
// until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to moviekeeper (type 'help' for commands)")

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
