package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"github.com/dmitrijs2005/moviekeeper/internal/rpc"
	"github.com/dmitrijs2005/moviekeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func decode(in *structpb.Struct, v any) error {
	if err := documents.FromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := documents.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}

func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, services.ErrInvalidDocument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		s.logger.Error(ctx, "document store failure", "method", method, "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.UserRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	doc, err := s.documents.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodGetUser, err)
	}
	return encode(doc)
}

func (s *GRPCServer) MergeUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var p documents.Profile
	if err := decode(in, &p); err != nil {
		return nil, err
	}

	if err := s.documents.MergeUser(ctx, p); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodMergeUser, err)
	}
	return empty(), nil
}

func (s *GRPCServer) SetActivityLog(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.ActivityLogRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	if err := s.documents.SetActivityLog(ctx, req.UserID, req.ActivityLog); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodSetActivityLog, err)
	}
	return empty(), nil
}

func (s *GRPCServer) PutFavorite(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.FavoriteRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	if err := s.documents.PutFavorite(ctx, req.UserID, req.Favorite); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodPutFavorite, err)
	}
	return empty(), nil
}

func (s *GRPCServer) DeleteFavorite(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.FavoriteKeyRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	if err := s.documents.DeleteFavorite(ctx, req.UserID, req.MovieID); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodDeleteFavorite, err)
	}
	return empty(), nil
}

func (s *GRPCServer) ListFavorites(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.UserRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	favs, err := s.documents.ListFavorites(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodListFavorites, err)
	}
	if favs == nil {
		favs = []documents.FavoriteDocument{}
	}
	return encode(rpc.FavoritesResponse{Favorites: favs})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.documents.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "err", err)
		return nil, status.Error(codes.Unavailable, "database unavailable")
	}
	return encode(rpc.PingResponse{Status: rpc.PingStatusOK})
}
