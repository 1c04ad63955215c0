// Package grpc exposes the document store over gRPC. Every method except
// Ping requires an access token whose subject owns the addressed user_id.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/rpc"
	"google.golang.org/grpc"
)

// Documents is the service the handlers delegate to.
type Documents interface {
	GetUser(ctx context.Context, userID string) (*documents.UserDocument, error)
	MergeUser(ctx context.Context, p documents.Profile) error
	SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error
	PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error
	DeleteFavorite(ctx context.Context, userID, movieID string) error
	ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error)
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address   string
	documents Documents
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.DocumentStoreServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, docs Documents, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		documents: docs,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterDocumentStoreServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	<-stopped
	return nil
}
