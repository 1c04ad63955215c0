package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/client"
	"github.com/dmitrijs2005/moviekeeper/internal/client/localstore"
	"github.com/dmitrijs2005/moviekeeper/internal/cryptox"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

// recordingLogger keeps every message for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) add(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg+" "+fmt.Sprint(args...))
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.add("INFO", msg, args...) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("WARN", msg, args...) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.add("ERROR", msg, args...) }
func (l *recordingLogger) With(...any) logging.Logger                      { return l }

func (l *recordingLogger) contains(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.HasPrefix(e, level+" "+msg) {
			return true
		}
	}
	return false
}

type harness struct {
	store      *localstore.Store
	remote     *client.MemoryClient
	guard      *cryptox.Guard
	dispatcher *Dispatcher
	log        *recordingLogger
	users      UserSyncService
	favorites  FavoritesSyncService
}

func newTestGuard(t *testing.T, fill byte) *cryptox.Guard {
	t.Helper()
	g, err := cryptox.NewGuard(bytes.Repeat([]byte{fill}, cryptox.KeySize))
	require.NoError(t, err)
	return g
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		store:  store,
		remote: client.NewMemoryClient(),
		guard:  newTestGuard(t, 0x42),
		log:    &recordingLogger{},
	}
	h.dispatcher = NewDispatcher(h.log, time.Second)
	t.Cleanup(h.dispatcher.Close)

	h.users = NewUserSyncService(store, h.remote, h.guard, h.dispatcher, h.log, time.Second)
	h.favorites = NewFavoritesSyncService(store, h.remote, h.dispatcher, h.log, time.Second)
	return h
}

func (h *harness) encrypt(t *testing.T, s string) string {
	t.Helper()
	c, err := h.guard.Encrypt(s)
	require.NoError(t, err)
	return c
}

var t0 = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
