package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Package は公開する gRPC サービスのパッケージ名です。
const Package = "hr.v1"

// unaryFunc は Struct を受け取り Struct を返す単項 RPC の実装です。
type unaryFunc func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

type method struct {
	name string
	call unaryFunc
}

// Registrar は gRPC サーバーへ自身を登録できるハンドラです。
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}

// serviceDesc はコード生成を行わずに ServiceDesc を組み立てます。
// リクエストとレスポンスはすべて google.protobuf.Struct です。
func serviceDesc(service string, methods ...method) *grpc.ServiceDesc {
	fullName := Package + "." + service
	desc := &grpc.ServiceDesc{
		ServiceName: fullName,
		HandlerType: (*any)(nil),
		Methods:     make([]grpc.MethodDesc, 0, len(methods)),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "hr/v1/" + service + ".proto",
	}

	for _, m := range methods {
		fullMethod := "/" + fullName + "/" + m.name
		call := m.call
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(structpb.Struct)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return call(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return call(ctx, req.(*structpb.Struct))
				})
			},
		})
	}
	return desc
}

// FullMethod は RPC のフルメソッド名を返します。
func FullMethod(service, name string) string {
	return "/" + Package + "." + service + "/" + name
}
