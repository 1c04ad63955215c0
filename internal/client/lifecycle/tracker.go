package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

// DefaultDebounce absorbs short trips to the background.
const DefaultDebounce = time.Second

// Recorder stores login and logout times. services.UserSyncService
// implements it.
type Recorder interface {
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	RecordLogout(ctx context.Context, userID string, at time.Time) error
}

// SessionFlag persists the id of the user with an open session.
type SessionFlag interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State of the tracked session.
type State int

const (
	Idle State = iota
	Active
	LogoutPending
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case LogoutPending:
		return "logout_pending"
	case LoggedOut:
		return "logged_out"
	default:
		return "idle"
	}
}

// Tracker is the session state machine.
//
// At most one login is recorded per foreground episode and at most one
// logout per background episode: hasLoggedIn and hasLoggedOut are latches
// reset by the opposite transition. A background event schedules the logout
// after the debounce window; a foreground event for the same user inside
// the window cancels it.
type Tracker struct {
	recorder Recorder
	flag     SessionFlag
	clock    Clock
	debounce time.Duration
	log      logging.Logger

	mu           sync.Mutex
	userID       string
	hasLoggedIn  bool
	hasLoggedOut bool
	pending      Timer
	generation   uint64
}

type Option func(*Tracker)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithDebounce sets the background→logout delay. Zero logs out at once.
func WithDebounce(d time.Duration) Option {
	return func(t *Tracker) { t.debounce = d }
}

func NewTracker(recorder Recorder, flag SessionFlag, log logging.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		recorder: recorder,
		flag:     flag,
		clock:    SystemClock{},
		debounce: DefaultDebounce,
		log:      log.With("module", "lifecycle"),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// State returns the current state of the session.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.pending != nil:
		return LogoutPending
	case t.hasLoggedIn:
		return Active
	case t.hasLoggedOut:
		return LoggedOut
	default:
		return Idle
	}
}

// Start closes a session left open by a previous process that ended without
// recording its logout. It must run before the first event.
func (t *Tracker) Start(ctx context.Context) error {
	raw, err := t.flag.Get(ctx, metadata.KeySessionUserID)
	if err != nil {
		return fmt.Errorf("read session flag: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	userID := string(raw)
	t.log.Warn(ctx, "previous session was not closed, closing it now", "user_id", userID)

	if err := t.recorder.RecordLogout(ctx, userID, t.clock.Now()); err != nil {
		return fmt.Errorf("close stale session of %s: %w", userID, err)
	}
	if err := t.flag.Delete(ctx, metadata.KeySessionUserID); err != nil {
		return fmt.Errorf("clear session flag: %w", err)
	}
	return nil
}

// Run handles events from src until ctx is done or src is closed. A logout
// still pending when src closes is recorded before Run returns.
func (t *Tracker) Run(ctx context.Context, src EventSource) error {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				t.Flush(ctx)
				return nil
			}
			t.Handle(ctx, ev)
		}
	}
}

// Handle applies a single event.
func (t *Tracker) Handle(ctx context.Context, ev Event) {
	if ev.UserID == "" {
		t.log.Warn(ctx, "lifecycle event without user", "event", ev.Kind.String())
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case Foreground:
		t.foreground(ctx, ev.UserID)
	case Background:
		t.background(ctx, ev.UserID)
	case ProcessDestroyed:
		t.cancelPending()
		t.logout(ctx, ev.UserID)
	default:
		t.log.Warn(ctx, "unknown lifecycle event", "event", int(ev.Kind))
	}
}

// Flush records a pending logout immediately.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelPending() {
		t.logout(ctx, t.userID)
	}
}

func (t *Tracker) foreground(ctx context.Context, userID string) {
	if t.userID != "" && t.userID != userID {
		t.cancelPending()
		t.logout(ctx, t.userID)
	}

	if t.cancelPending() {
		t.log.Debug(ctx, "pending logout cancelled", "user_id", userID)
	}

	t.userID = userID
	if t.hasLoggedIn {
		return
	}

	if err := t.recorder.RecordLogin(ctx, userID, t.clock.Now()); err != nil {
		t.log.Error(ctx, "record login failed", "user_id", userID, "err", err)
		return
	}
	if err := t.flag.Set(ctx, metadata.KeySessionUserID, []byte(userID)); err != nil {
		t.log.Error(ctx, "set session flag failed", "user_id", userID, "err", err)
	}

	t.hasLoggedIn = true
	t.hasLoggedOut = false
}

func (t *Tracker) background(ctx context.Context, userID string) {
	if t.pending != nil || t.hasLoggedOut || !t.hasLoggedIn {
		t.log.Debug(ctx, "background ignored", "user_id", userID)
		return
	}

	t.userID = userID
	if t.debounce <= 0 {
		t.logout(ctx, userID)
		return
	}

	t.generation++
	gen := t.generation
	jobCtx := context.WithoutCancel(ctx)
	t.pending = t.clock.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.generation != gen || t.pending == nil {
			return
		}
		t.pending = nil
		t.logout(jobCtx, userID)
	})
}

// cancelPending stops a scheduled logout and reports whether there was one.
func (t *Tracker) cancelPending() bool {
	if t.pending == nil {
		return false
	}
	t.pending.Stop()
	t.pending = nil
	t.generation++
	return true
}

func (t *Tracker) logout(ctx context.Context, userID string) {
	if t.hasLoggedOut || !t.hasLoggedIn {
		t.log.Debug(ctx, "logout already recorded", "user_id", userID)
		return
	}

	if err := t.recorder.RecordLogout(ctx, userID, t.clock.Now()); err != nil {
		t.log.Error(ctx, "record logout failed", "user_id", userID, "err", err)
	}
	if err := t.flag.Delete(ctx, metadata.KeySessionUserID); err != nil {
		t.log.Error(ctx, "clear session flag failed", "user_id", userID, "err", err)
	}

	t.hasLoggedOut = true
	t.hasLoggedIn = false
}
