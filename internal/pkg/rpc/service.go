package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Unary describes one unary method whose request and response are JSON encoded structs.
func Unary[Req any, Resp any](service, method string, fn func(ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// NewServiceDesc builds a descriptor for RegisterService. Handlers are closures, so the
// descriptor accepts any implementation value.
func NewServiceDesc(name string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*interface{})(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
	}
}

// Invoke calls service/method with the JSON codec.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, service, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	return cc.Invoke(ctx, "/"+service+"/"+method, in, out, opts...)
}

// Empty is the response of methods that return nothing.
type Empty struct{}
