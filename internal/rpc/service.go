// Package rpc describes the moviekeeper.DocumentStore gRPC service.
//
// Every request and response is a google.protobuf.Struct carrying one of the
// JSON documents in this package or in internal/documents, so the service
// needs no generated message types.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "moviekeeper.DocumentStore"

const (
	MethodGetUser        = "GetUser"
	MethodMergeUser      = "MergeUser"
	MethodSetActivityLog = "SetActivityLog"
	MethodPutFavorite    = "PutFavorite"
	MethodDeleteFavorite = "DeleteFavorite"
	MethodListFavorites  = "ListFavorites"
	MethodPing           = "Ping"
)

// FullMethod returns the wire name of a method, e.g. "/moviekeeper.DocumentStore/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// DocumentStoreServer is implemented by the document server.
type DocumentStoreServer interface {
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MergeUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetActivityLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFavorites(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type methodFunc func(DocumentStoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call methodFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DocumentStoreServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DocumentStoreServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DocumentStoreServiceDesc is the grpc.ServiceDesc for the document store.
var DocumentStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodGetUser, DocumentStoreServer.GetUser),
		unaryMethod(MethodMergeUser, DocumentStoreServer.MergeUser),
		unaryMethod(MethodSetActivityLog, DocumentStoreServer.SetActivityLog),
		unaryMethod(MethodPutFavorite, DocumentStoreServer.PutFavorite),
		unaryMethod(MethodDeleteFavorite, DocumentStoreServer.DeleteFavorite),
		unaryMethod(MethodListFavorites, DocumentStoreServer.ListFavorites),
		unaryMethod(MethodPing, DocumentStoreServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "moviekeeper/documentstore",
}

// RegisterDocumentStoreServer registers srv on s.
func RegisterDocumentStoreServer(s grpc.ServiceRegistrar, srv DocumentStoreServer) {
	s.RegisterService(&DocumentStoreServiceDesc, srv)
}

// DocumentStoreClient is the client side of the service.
type DocumentStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentStoreClient(cc grpc.ClientConnInterface) *DocumentStoreClient {
	return &DocumentStoreClient{cc: cc}
}

// Call invokes method with in and returns the response document.
func (c *DocumentStoreClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
