package codec

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// The service is declared by hand: every message is a google.protobuf.Struct,
// so no generated code is needed on either side.

const serviceName = "splitshift.v1.CipherService"

// CipherServiceServer is the server API for the cipher service.
type CipherServiceServer interface {
	Encode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Recover(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Verify(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// CipherServiceClient is the client API for the cipher service.
type CipherServiceClient interface {
	Encode(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Decode(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Recover(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type serverCall func(CipherServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call serverCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CipherServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var cipherServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CipherServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Encode", Handler: unaryHandler("Encode", CipherServiceServer.Encode)},
		{MethodName: "Decode", Handler: unaryHandler("Decode", CipherServiceServer.Decode)},
		{MethodName: "Recover", Handler: unaryHandler("Recover", CipherServiceServer.Recover)},
		{MethodName: "Verify", Handler: unaryHandler("Verify", CipherServiceServer.Verify)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "splitshift/v1/cipher.proto",
}

// RegisterCipherServiceServer registers srv on s.
func RegisterCipherServiceServer(s grpc.ServiceRegistrar, srv CipherServiceServer) {
	s.RegisterService(&cipherServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// #endregion service-desc

// #region client-stub
type cipherServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCipherServiceClient returns a stub over cc.
func NewCipherServiceClient(cc grpc.ClientConnInterface) CipherServiceClient {
	return &cipherServiceClient{cc: cc}
}

func (c *cipherServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cipherServiceClient) Encode(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Encode", in, opts)
}

func (c *cipherServiceClient) Decode(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Decode", in, opts)
}

func (c *cipherServiceClient) Recover(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Recover", in, opts)
}

func (c *cipherServiceClient) Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Verify", in, opts)
}

// #endregion client-stub
