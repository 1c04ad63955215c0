package client

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
)

// MemoryClient is an in-process document store.
type MemoryClient struct {
	mu        sync.Mutex
	users     map[string]*documents.UserDocument
	favorites map[string]map[string]documents.FavoriteDocument
	failure   error
	calls     []string
}

var _ Client = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		users:     make(map[string]*documents.UserDocument),
		favorites: make(map[string]map[string]documents.FavoriteDocument),
	}
}

// SetFailure makes every following call fail with err wrapped in
// ErrUnavailable. A nil err restores normal operation.
func (m *MemoryClient) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Calls returns the names of the write operations performed so far, in
// order, as "Method:user_id".
func (m *MemoryClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *MemoryClient) enter(method, userID string, write bool) error {
	if m.failure != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, method, m.failure)
	}
	if write {
		m.calls = append(m.calls, method+":"+userID)
	}
	return nil
}

func copyUser(d *documents.UserDocument) *documents.UserDocument {
	out := *d
	if d.ActivityLog == nil {
		return &out
	}
	out.ActivityLog = make(documents.ActivityLog, len(d.ActivityLog))
	for i, e := range d.ActivityLog {
		out.ActivityLog[i] = e
		if e.LogoutTime != nil {
			t := *e.LogoutTime
			out.ActivityLog[i].LogoutTime = &t
		}
	}
	return &out
}

func (m *MemoryClient) userOrNew(userID string) *documents.UserDocument {
	doc, ok := m.users[userID]
	if !ok {
		doc = &documents.UserDocument{Profile: documents.Profile{UserID: userID}}
		m.users[userID] = doc
	}
	return doc
}

func (m *MemoryClient) GetUser(_ context.Context, userID string) (*documents.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("GetUser", userID, false); err != nil {
		return nil, err
	}
	doc, ok := m.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(doc), nil
}

func (m *MemoryClient) MergeUser(_ context.Context, p documents.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("MergeUser", p.UserID, true); err != nil {
		return err
	}
	m.userOrNew(p.UserID).Profile.Overlay(p)
	return nil
}

func (m *MemoryClient) SetActivityLog(_ context.Context, userID string, log documents.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("SetActivityLog", userID, true); err != nil {
		return err
	}
	m.userOrNew(userID).ActivityLog = copyUser(&documents.UserDocument{ActivityLog: log}).ActivityLog
	return nil
}

func (m *MemoryClient) PutFavorite(_ context.Context, userID string, f documents.FavoriteDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("PutFavorite", userID, true); err != nil {
		return err
	}
	set, ok := m.favorites[userID]
	if !ok {
		set = make(map[string]documents.FavoriteDocument)
		m.favorites[userID] = set
	}
	set[f.ID] = f
	return nil
}

func (m *MemoryClient) DeleteFavorite(_ context.Context, userID, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("DeleteFavorite", userID, true); err != nil {
		return err
	}
	delete(m.favorites[userID], movieID)
	return nil
}

func (m *MemoryClient) ListFavorites(_ context.Context, userID string) ([]documents.FavoriteDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("ListFavorites", userID, false); err != nil {
		return nil, err
	}
	result := make([]documents.FavoriteDocument, 0, len(m.favorites[userID]))
	for _, f := range m.favorites[userID] {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryClient) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("Ping", "", false)
}

func (m *MemoryClient) Close() error {
	return nil
}
