package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/client"
	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

// SyncState tracks a user's profile reconciliation.
type SyncState int

const (
	Unsynced SyncState = iota
	Syncing
	Synced
)

func (s SyncState) String() string {
	switch s {
	case Syncing:
		return "syncing"
	case Synced:
		return "synced"
	default:
		return "unsynced"
	}
}

// UserSyncService keeps a user's profile and activity log consistent between
// the local store and the remote store.
//
// Contract:
//   - SyncOnSignIn: reconcile the profile after authentication.
//   - GetUser: decrypted profile; nil when unknown or unreadable.
//   - UpdateProfile: preserve-on-null edit, mirrored remotely.
//   - RecordLogin / RecordLogout: maintain the activity log.
//   - State: reconciliation state of a user.
//
// Every method fails with common.ErrNotAuthenticated for an empty user id.
type UserSyncService interface {
	SyncOnSignIn(ctx context.Context, id models.Identity) error
	GetUser(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) error
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	RecordLogout(ctx context.Context, userID string, at time.Time) error
	State(userID string) SyncState
}

type userSyncService struct {
	store         UserStore
	remote        client.Client
	cipher        Cipher
	dispatcher    *Dispatcher
	log           logging.Logger
	remoteTimeout time.Duration

	mu     sync.Mutex
	states map[string]SyncState
}

// NewUserSyncService wires the engine. remoteTimeout bounds the synchronous
// remote fetch done at sign-in.
func NewUserSyncService(store UserStore, remote client.Client, cipher Cipher, d *Dispatcher, log logging.Logger, remoteTimeout time.Duration) UserSyncService {
	return &userSyncService{
		store:         store,
		remote:        remote,
		cipher:        cipher,
		dispatcher:    d,
		log:           log.With("module", "user_sync"),
		remoteTimeout: remoteTimeout,
		states:        make(map[string]SyncState),
	}
}

func (s *userSyncService) State(userID string) SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

func (s *userSyncService) setState(userID string, st SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

func (s *userSyncService) withRemoteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.remoteTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.remoteTimeout)
}

func (s *userSyncService) SyncOnSignIn(ctx context.Context, id models.Identity) error {
	if id.UserID == "" {
		return common.ErrNotAuthenticated
	}

	s.setState(id.UserID, Syncing)

	local, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		s.setState(id.UserID, Unsynced)
		return err
	}

	rctx, cancel := s.withRemoteTimeout(ctx)
	remote, err := s.remote.GetUser(rctx, id.UserID)
	cancel()

	remoteOK := true
	switch {
	case errors.Is(err, common.ErrorNotFound):
		remote = nil
	case err != nil:
		s.log.Warn(ctx, "remote profile unavailable, continuing local-only", "user_id", id.UserID, "err", err)
		remote = nil
		remoteOK = false
	}

	merged := mergeUser(local, remote, id, s.decryptable)

	if local == nil {
		if err := s.store.UpsertUser(ctx, &merged); err != nil {
			s.setState(id.UserID, Unsynced)
			return err
		}
	} else if err := s.store.UpdateUser(ctx, id.UserID, patchFrom(merged)); err != nil {
		s.setState(id.UserID, Unsynced)
		return err
	}

	if !remoteOK {
		s.setState(id.UserID, Unsynced)
		return nil
	}

	profile := profileDocument(merged)
	s.dispatcher.Submit(ctx, "merge-user", func(ctx context.Context) error {
		if err := s.remote.MergeUser(ctx, profile); err != nil {
			s.setState(profile.UserID, Unsynced)
			return fmt.Errorf("mirror profile of %s: %w", profile.UserID, err)
		}
		s.setState(profile.UserID, Synced)
		return nil
	})
	return nil
}

func (s *userSyncService) decryptable(v string) bool {
	_, err := s.cipher.Decrypt(v)
	return err == nil
}

// mergeUser reconciles the local and remote records of a user. Either may be
// nil. Empty values never replace non-empty ones. The remote document is
// shared by every device, so its email is the first write and wins.
func mergeUser(local *models.User, remote *documents.UserDocument, id models.Identity, decryptable func(string) bool) models.User {
	var l models.User
	if local != nil {
		l = *local
	}
	var r documents.Profile
	if remote != nil {
		r = remote.Profile
	}

	merged := l
	merged.UserID = id.UserID
	merged.Name = firstNonEmpty(id.DisplayName, r.Name, l.Name, common.DefaultUserName)
	merged.Email = firstNonEmpty(r.Email, l.Email, id.Email)
	merged.Address = pickSensitive(r.Address, l.Address, decryptable)
	merged.Phone = pickSensitive(r.Phone, l.Phone, decryptable)
	merged.Image = firstNonEmpty(r.Image, l.Image, id.AvatarURL)
	return merged
}

// pickSensitive prefers the remote ciphertext when this device can open it.
func pickSensitive(remote, local string, decryptable func(string) bool) string {
	if remote != "" && decryptable(remote) {
		return remote
	}
	return local
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func patchFrom(u models.User) models.UserPatch {
	return models.UserPatch{
		Name:    optional(u.Name),
		Email:   optional(u.Email),
		Address: optional(u.Address),
		Phone:   optional(u.Phone),
		Image:   optional(u.Image),
	}
}

func profileDocument(u models.User) documents.Profile {
	return documents.Profile{
		UserID:  u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Phone:   u.Phone,
		Image:   u.Image,
	}
}

// GetUser returns the decrypted profile. A local read failure is logged and
// reported as a nil profile; a field that cannot be decrypted is returned
// empty.
func (s *userSyncService) GetUser(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, common.ErrNotAuthenticated
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "read user failed", "user_id", userID, "err", err)
		return nil, nil
	}
	if u == nil {
		return nil, nil
	}

	p := &models.Profile{
		UserID:  u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Image:   u.Image,
		Address: s.decryptField(ctx, userID, "address", u.Address),
		Phone:   s.decryptField(ctx, userID, "phone", u.Phone),
	}
	if u.LoginTime != nil {
		p.LoginTime = *u.LoginTime
	}
	if u.LogoutTime != nil {
		p.LogoutTime = *u.LogoutTime
	}
	return p, nil
}

func (s *userSyncService) decryptField(ctx context.Context, userID, field, value string) string {
	plain, err := s.cipher.Decrypt(value)
	if err != nil {
		s.log.Warn(ctx, "field unavailable", "user_id", userID, "field", field, "err", err)
		return ""
	}
	return plain
}

// UpdateProfile encrypts the sensitive fields of patch, applies it locally
// and mirrors the stored record. Encryption and local write errors are
// returned.
func (s *userSyncService) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	enc := patch
	var err error
	if enc.Address, err = s.encryptField(patch.Address); err != nil {
		return fmt.Errorf("encrypt address: %w", err)
	}
	if enc.Phone, err = s.encryptField(patch.Phone); err != nil {
		return fmt.Errorf("encrypt phone: %w", err)
	}

	if err := s.store.UpdateUser(ctx, userID, enc); err != nil {
		return err
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil || u == nil {
		s.log.Warn(ctx, "updated user not readable, skipping remote mirror", "user_id", userID, "err", err)
		return nil
	}

	profile := profileDocument(*u)
	s.dispatcher.Submit(ctx, "merge-user", func(ctx context.Context) error {
		return s.remote.MergeUser(ctx, profile)
	})
	return nil
}

func (s *userSyncService) encryptField(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	c, err := s.cipher.Encrypt(*v)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RecordLogin stores the login time locally and appends an open entry to
// the remote activity log. A profile that never reached the remote store,
// e.g. after an offline sign-in, is uploaded first.
func (s *userSyncService) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	ts := common.FormatTimestamp(at)
	if err := s.store.UpdateLoginTime(ctx, userID, ts); err != nil {
		return err
	}

	s.dispatcher.Submit(ctx, "record-login", func(ctx context.Context) error {
		if err := s.mirrorIfUnsynced(ctx, userID); err != nil {
			return err
		}

		log, err := s.remoteActivityLog(ctx, userID)
		if err != nil {
			return err
		}

		updated, ok := log.AppendLogin(ts)
		if !ok {
			s.log.Info(ctx, "login already recorded", "user_id", userID, "login_time", ts)
			return nil
		}
		return s.remote.SetActivityLog(ctx, userID, updated)
	})
	return nil
}

// RecordLogout closes the open session locally and remotely. Without an
// open session it only logs.
func (s *userSyncService) RecordLogout(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	ts := common.FormatTimestamp(at)

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u != nil && u.HasOpenSession() {
		if err := s.store.UpdateLogoutTime(ctx, userID, ts); err != nil {
			return err
		}
	} else {
		s.log.Info(ctx, "no open local session", "user_id", userID)
	}

	s.dispatcher.Submit(ctx, "record-logout", func(ctx context.Context) error {
		log, err := s.remoteActivityLog(ctx, userID)
		if err != nil {
			return err
		}

		updated, ok := log.CloseOpen(ts)
		if !ok {
			s.log.Info(ctx, "no open activity entry", "user_id", userID)
			return nil
		}
		return s.remote.SetActivityLog(ctx, userID, updated)
	})
	return nil
}

// mirrorIfUnsynced uploads the local profile unless it is already synced.
func (s *userSyncService) mirrorIfUnsynced(ctx context.Context, userID string) error {
	if s.State(userID) == Synced {
		return nil
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	if err := s.remote.MergeUser(ctx, profileDocument(*u)); err != nil {
		s.setState(userID, Unsynced)
		return fmt.Errorf("mirror profile of %s: %w", userID, err)
	}
	s.setState(userID, Synced)
	s.log.Info(ctx, "profile mirrored after reconnect", "user_id", userID)
	return nil
}

func (s *userSyncService) remoteActivityLog(ctx context.Context, userID string) (documents.ActivityLog, error) {
	doc, err := s.remote.GetUser(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch activity log of %s: %w", userID, err)
	}
	return doc.ActivityLog, nil
}
