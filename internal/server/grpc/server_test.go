package grpc

import (
	"context"
	"net"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/rpc"
	"github.com/dmitrijs2005/moviekeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testSecret = "super-secret"

// memDocuments is an in-memory Documents used by the server tests.
type memDocuments struct {
	mu      sync.Mutex
	users   map[string]*documents.UserDocument
	favs    map[string]map[string]documents.FavoriteDocument
	pingErr error
}

func newMemDocuments() *memDocuments {
	return &memDocuments{
		users: map[string]*documents.UserDocument{},
		favs:  map[string]map[string]documents.FavoriteDocument{},
	}
}

func (m *memDocuments) GetUser(_ context.Context, userID string) (*documents.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memDocuments) MergeUser(_ context.Context, p documents.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.users[p.UserID]
	if !ok {
		doc = &documents.UserDocument{Profile: documents.Profile{UserID: p.UserID}}
		m.users[p.UserID] = doc
	}
	if p.Name != "" {
		doc.Name = p.Name
	}
	if p.Email != "" {
		doc.Email = p.Email
	}
	return nil
}

func (m *memDocuments) SetActivityLog(_ context.Context, userID string, log documents.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.users[userID]
	if !ok {
		doc = &documents.UserDocument{Profile: documents.Profile{UserID: userID}}
		m.users[userID] = doc
	}
	doc.ActivityLog = log
	return nil
}

func (m *memDocuments) PutFavorite(_ context.Context, userID string, f documents.FavoriteDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favs[userID] == nil {
		m.favs[userID] = map[string]documents.FavoriteDocument{}
	}
	m.favs[userID][f.ID] = f
	return nil
}

func (m *memDocuments) DeleteFavorite(_ context.Context, userID, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.favs[userID][movieID]; !ok {
		return common.ErrorNotFound
	}
	delete(m.favs[userID], movieID)
	return nil
}

func (m *memDocuments) ListFavorites(_ context.Context, userID string) ([]documents.FavoriteDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]documents.FavoriteDocument, 0, len(m.favs[userID]))
	for _, f := range m.favs[userID] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDocuments) Ping(context.Context) error { return m.pingErr }

// startBufServer serves s over an in-memory listener and returns a client.
func startBufServer(t *testing.T, s *GRPCServer) *rpc.DocumentStoreClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return rpc.NewDocumentStoreClient(conn)
}

func withToken(t *testing.T, userID string) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}

func toStruct(t *testing.T, v any) *structpb.Struct {
	t.Helper()
	s, err := documents.ToStruct(v)
	require.NoError(t, err)
	return s
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), newMemDocuments(), "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), newMemDocuments(), "secret")
	assert.Error(t, srv.Run(context.Background()))
}

func TestServer_DocumentRoundTrip(t *testing.T) {
	c := startBufServer(t, NewGRPCServer("", logging.Nop(), newMemDocuments(), testSecret))
	ctx := withToken(t, "u1")

	_, err := c.Call(ctx, rpc.MethodGetUser, toStruct(t, rpc.UserRequest{UserID: "u1"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Call(ctx, rpc.MethodMergeUser, toStruct(t, documents.Profile{UserID: "u1", Name: "Ann"}))
	require.NoError(t, err)

	log, _ := documents.ActivityLog(nil).AppendLogin("2025-01-02 10:00:00.000000")
	_, err = c.Call(ctx, rpc.MethodSetActivityLog, toStruct(t, rpc.ActivityLogRequest{UserID: "u1", ActivityLog: log}))
	require.NoError(t, err)

	out, err := c.Call(ctx, rpc.MethodGetUser, toStruct(t, rpc.UserRequest{UserID: "u1"}))
	require.NoError(t, err)

	var doc documents.UserDocument
	require.NoError(t, documents.FromStruct(out, &doc))
	assert.Equal(t, "Ann", doc.Name)
	require.Len(t, doc.ActivityLog, 1)
	assert.True(t, doc.ActivityLog[0].IsOpen())
	assert.Equal(t, int64(1), doc.ActivityLog[0].Seq)
}

func TestServer_Favorites(t *testing.T) {
	c := startBufServer(t, NewGRPCServer("", logging.Nop(), newMemDocuments(), testSecret))
	ctx := withToken(t, "u1")

	for _, id := range []string{"m2", "m1"} {
		_, err := c.Call(ctx, rpc.MethodPutFavorite, toStruct(t, rpc.FavoriteRequest{
			UserID:   "u1",
			Favorite: documents.FavoriteDocument{ID: id, Title: "t-" + id},
		}))
		require.NoError(t, err)
	}

	_, err := c.Call(ctx, rpc.MethodDeleteFavorite, toStruct(t, rpc.FavoriteKeyRequest{UserID: "u1", MovieID: "m2"}))
	require.NoError(t, err)

	_, err = c.Call(ctx, rpc.MethodDeleteFavorite, toStruct(t, rpc.FavoriteKeyRequest{UserID: "u1", MovieID: "m2"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	out, err := c.Call(ctx, rpc.MethodListFavorites, toStruct(t, rpc.UserRequest{UserID: "u1"}))
	require.NoError(t, err)

	var resp rpc.FavoritesResponse
	require.NoError(t, documents.FromStruct(out, &resp))
	require.Len(t, resp.Favorites, 1)
	assert.Equal(t, documents.FavoriteDocument{ID: "m1", Title: "t-m1"}, resp.Favorites[0])
}

func TestServer_PingNeedsNoToken(t *testing.T) {
	docs := newMemDocuments()
	c := startBufServer(t, NewGRPCServer("", logging.Nop(), docs, testSecret))

	out, err := c.Call(context.Background(), rpc.MethodPing, &structpb.Struct{})
	require.NoError(t, err)

	var resp rpc.PingResponse
	require.NoError(t, documents.FromStruct(out, &resp))
	assert.Equal(t, rpc.PingStatusOK, resp.Status)
}

func TestServer_Auth(t *testing.T) {
	c := startBufServer(t, NewGRPCServer("", logging.Nop(), newMemDocuments(), testSecret))
	req := toStruct(t, rpc.UserRequest{UserID: "u1"})

	t.Run("missing token", func(t *testing.T) {
		_, err := c.Call(context.Background(), rpc.MethodListFavorites, req)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("foreign signature", func(t *testing.T) {
		tok, err := auth.GenerateToken("u1", []byte("other"), time.Hour)
		require.NoError(t, err)
		ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)

		_, err = c.Call(ctx, rpc.MethodListFavorites, req)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("other user", func(t *testing.T) {
		_, err := c.Call(withToken(t, "u2"), rpc.MethodListFavorites, req)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("no user id", func(t *testing.T) {
		_, err := c.Call(withToken(t, "u1"), rpc.MethodListFavorites, &structpb.Struct{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}
