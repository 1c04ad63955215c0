package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type documentCaller interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      documentCaller

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := c.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", common.ErrRemoteSync, endpointURL, err)
	}

	c.conn = conn
	c.client = rpc.NewDocumentStoreClient(conn)
	return c, nil
}

// SetAccessToken replaces the token sent with every call, e.g. after the
// identity provider issued a new one.
func (c *GRPCClient) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *GRPCClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) call(ctx context.Context, method string, req, resp any) error {
	in, err := documents.ToStruct(req)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", common.ErrRemoteSync, method, err)
	}

	out, err := c.client.Call(ctx, method, in)
	if err != nil {
		return c.mapError(err)
	}

	if resp == nil {
		return nil
	}
	if err := documents.FromStruct(out, resp); err != nil {
		return fmt.Errorf("%w: decode %s: %w", common.ErrRemoteSync, method, err)
	}
	return nil
}

func (c *GRPCClient) GetUser(ctx context.Context, userID string) (*documents.UserDocument, error) {
	var doc documents.UserDocument
	if err := c.call(ctx, rpc.MethodGetUser, rpc.UserRequest{UserID: userID}, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *GRPCClient) MergeUser(ctx context.Context, p documents.Profile) error {
	return c.call(ctx, rpc.MethodMergeUser, p, nil)
}

func (c *GRPCClient) SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error {
	if log == nil {
		log = documents.ActivityLog{}
	}
	return c.call(ctx, rpc.MethodSetActivityLog, rpc.ActivityLogRequest{UserID: userID, ActivityLog: log}, nil)
}

func (c *GRPCClient) PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error {
	return c.call(ctx, rpc.MethodPutFavorite, rpc.FavoriteRequest{UserID: userID, Favorite: f}, nil)
}

func (c *GRPCClient) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	err := c.call(ctx, rpc.MethodDeleteFavorite, rpc.FavoriteKeyRequest{UserID: userID, MovieID: movieID}, nil)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (c *GRPCClient) ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error) {
	var resp rpc.FavoritesResponse
	if err := c.call(ctx, rpc.MethodListFavorites, rpc.UserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.Favorites == nil {
		resp.Favorites = []documents.FavoriteDocument{}
	}
	return resp.Favorites, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	var resp rpc.PingResponse
	if err := c.call(ctx, rpc.MethodPing, struct{}{}, &resp); err != nil {
		return err
	}
	if resp.Status != rpc.PingStatusOK {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("%w: rpc error: %w", common.ErrRemoteSync, err)
	}
}
