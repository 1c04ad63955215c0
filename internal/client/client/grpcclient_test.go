package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeCaller struct {
	lastMethod string
	lastReq    *structpb.Struct

	resp any
	err  error
}

func (f *fakeCaller) Call(_ context.Context, method string, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastMethod = method
	f.lastReq = in
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &structpb.Struct{}, nil
	}
	return documents.ToStruct(f.resp)
}

func reqField(t *testing.T, f *fakeCaller, name string) *structpb.Value {
	t.Helper()
	require.NotNil(t, f.lastReq)
	v, ok := f.lastReq.GetFields()[name]
	require.True(t, ok, "field %s missing", name)
	return v
}

func TestInterceptor_AddsAccessToken(t *testing.T) {
	c := &GRPCClient{accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Equal(t, []string{"A1"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/m", nil, nil, nil, invoker))

	c.SetAccessToken("A2")
	invoker2 := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Equal(t, []string{"A2"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/m", nil, nil, nil, invoker2))
}

func TestInterceptor_NoTokenNoMetadata(t *testing.T) {
	c := &GRPCClient{}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Empty(t, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/m", nil, nil, nil, invoker))
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x-other", "1")
	ctx = withAccessToken(ctx, "new")

	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"1"}, md.Get("x-other"))
}

func TestGRPCClient_GetUser(t *testing.T) {
	f := &fakeCaller{resp: documents.UserDocument{Profile: documents.Profile{UserID: "u1", Name: "Ana"}}}
	c := &GRPCClient{client: f}

	doc, err := c.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Name)
	assert.Equal(t, rpc.MethodGetUser, f.lastMethod)
	assert.Equal(t, "u1", reqField(t, f, "user_id").GetStringValue())
}

func TestGRPCClient_GetUser_NotFound(t *testing.T) {
	c := &GRPCClient{client: &fakeCaller{err: status.Error(codes.NotFound, "no user")}}

	_, err := c.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGRPCClient_Writes(t *testing.T) {
	f := &fakeCaller{}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	require.NoError(t, c.MergeUser(ctx, documents.Profile{UserID: "u1", Name: "Ana"}))
	assert.Equal(t, rpc.MethodMergeUser, f.lastMethod)
	assert.Equal(t, "Ana", reqField(t, f, "name").GetStringValue())

	require.NoError(t, c.SetActivityLog(ctx, "u1", nil))
	assert.Equal(t, rpc.MethodSetActivityLog, f.lastMethod)
	assert.NotNil(t, reqField(t, f, "activity_log").GetListValue())

	require.NoError(t, c.PutFavorite(ctx, "u1", documents.FavoriteDocument{ID: "42", Title: "T"}))
	assert.Equal(t, rpc.MethodPutFavorite, f.lastMethod)
	assert.Equal(t, "42", reqField(t, f, "favorite").GetStructValue().GetFields()["id"].GetStringValue())

	require.NoError(t, c.DeleteFavorite(ctx, "u1", "42"))
	assert.Equal(t, rpc.MethodDeleteFavorite, f.lastMethod)
	assert.Equal(t, "42", reqField(t, f, "movie_id").GetStringValue())
}

func TestGRPCClient_DeleteFavorite_NotFoundIsNoop(t *testing.T) {
	c := &GRPCClient{client: &fakeCaller{err: status.Error(codes.NotFound, "gone")}}

	assert.NoError(t, c.DeleteFavorite(context.Background(), "u1", "42"))
}

func TestGRPCClient_ListFavorites(t *testing.T) {
	f := &fakeCaller{resp: rpc.FavoritesResponse{Favorites: []documents.FavoriteDocument{{ID: "1"}, {ID: "2"}}}}
	c := &GRPCClient{client: f}

	list, err := c.ListFavorites(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	f.resp = nil
	list, err = c.ListFavorites(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGRPCClient_Ping(t *testing.T) {
	f := &fakeCaller{resp: rpc.PingResponse{Status: rpc.PingStatusOK}}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Ping(context.Background()))

	f.resp = rpc.PingResponse{Status: "DEGRADED"}
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "x"), ErrUnauthorized},
		{"permission denied", status.Error(codes.PermissionDenied, "x"), ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "x"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "x"), ErrUnavailable},
		{"not found", status.Error(codes.NotFound, "x"), common.ErrorNotFound},
		{"internal", status.Error(codes.Internal, "x"), common.ErrRemoteSync},
		{"plain", errors.New("boom"), common.ErrRemoteSync},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(tt.in), tt.want)
		})
	}

	assert.NoError(t, c.mapError(nil))
	assert.ErrorIs(t, ErrUnauthorized, common.ErrRemoteSync)
	assert.ErrorIs(t, ErrUnavailable, common.ErrRemoteSync)
}

func TestNewGRPCClient_Close(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:0", "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.token())
	require.NoError(t, c.Close())

	assert.NoError(t, (&GRPCClient{}).Close())
}
