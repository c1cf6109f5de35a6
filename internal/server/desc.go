package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName   = "uefiscdi.v1.JournalLookup"
	SearchMethod  = "/" + ServiceName + "/Search"
	ResolveMethod = "/" + ServiceName + "/Resolve"
	IndexMethod   = "/" + ServiceName + "/Index"
)

// JournalLookupServer is the server API for the JournalLookup service.
// Messages are google.protobuf.Struct so no generated code is needed.
type JournalLookupServer interface {
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Index(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterJournalLookupServer(s grpc.ServiceRegistrar, srv JournalLookupServer) {
	s.RegisterService(&JournalLookup_ServiceDesc, srv)
}

func unaryHandler(method string, call func(JournalLookupServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JournalLookupServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(JournalLookupServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var JournalLookup_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JournalLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: unaryHandler(SearchMethod, JournalLookupServer.Search)},
		{MethodName: "Resolve", Handler: unaryHandler(ResolveMethod, JournalLookupServer.Resolve)},
		{MethodName: "Index", Handler: unaryHandler(IndexMethod, JournalLookupServer.Index)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "uefiscdi/v1/lookup.proto",
}

// Client calls a remote JournalLookup service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Search(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SearchMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Resolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ResolveMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Index(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IndexMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
