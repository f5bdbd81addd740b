// Package remote implements the gRPC-backed external resolver hook of
// spec §4.5 (component C9, "if an external resolver is registered,
// delegate to it"), used for sparql/rest implementations that have no
// bound context value.
//
// A synthesized pipeline's remote payloads are already just the five
// internal/value kinds, so a single fixed
// google.golang.org/protobuf/types/known/structpb.Struct message
// carries every request/response shape this resolver ever needs —
// there is no protoc-generated .pb.go here, only a hand-built
// grpc.ServiceDesc/grpc.MethodDesc pair over that one message type.
package remote

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/typeforge/synthcore/internal/value"
)

// ResolveRequest carries the function name and positional input values
// for one sparql/rest resolution, wire-encoded as a structpb.Struct
// with a "function" string field and an "args" list field.
type ResolveRequest struct {
	Function string
	Args     []value.Value
}

func (r *ResolveRequest) toStruct() (*structpb.Struct, error) {
	args := make([]any, len(r.Args))
	for i, a := range r.Args {
		args[i] = value.ToGo(a)
	}
	return structpb.NewStruct(map[string]any{
		"function": r.Function,
		"args":     args,
	})
}

func requestFromStruct(s *structpb.Struct) (*ResolveRequest, error) {
	m := s.AsMap()
	fn, _ := m["function"].(string)
	rawArgs, _ := m["args"].([]any)
	args := make([]value.Value, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = value.FromGo(a)
	}
	return &ResolveRequest{Function: fn, Args: args}, nil
}

// ResolveResponse carries the resolved value, wire-encoded as a
// structpb.Struct with a single "value" field.
type ResolveResponse struct {
	Value value.Value
}

func (r *ResolveResponse) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"value": value.ToGo(r.Value)})
}

func responseFromStruct(s *structpb.Struct) *ResolveResponse {
	return &ResolveResponse{Value: value.FromGo(s.AsMap()["value"])}
}

// serviceName and methodName name the single RPC this package exposes;
// the descriptor below is built from these constants rather than from
// a .proto-generated registry.
const (
	serviceName = "synthcore.remote.Resolver"
	methodName  = "Resolve"
	fullMethod  = "/" + serviceName + "/" + methodName
)

// ResolverServer is implemented by a host that wants to answer
// sparql/rest implementations over the network.
type ResolverServer interface {
	Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error)
}

type resolverServerShim struct {
	impl ResolverServer
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		s := req.(*structpb.Struct)
		rr, err := requestFromStruct(s)
		if err != nil {
			return nil, err
		}
		shim := srv.(*resolverServerShim)
		resp, err := shim.impl.Resolve(ctx, rr)
		if err != nil {
			return nil, err
		}
		return resp.toStruct()
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the hand-built equivalent of what protoc-gen-go-grpc
// would otherwise generate for a one-method "Resolver" service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ResolverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodName, Handler: resolveHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/remote/resolver.go",
}

// RegisterResolverServer wires impl into s under the fixed service
// descriptor above.
func RegisterResolverServer(s *grpc.Server, impl ResolverServer) {
	s.RegisterService(&serviceDesc, &resolverServerShim{impl: impl})
}

// ResolverClient calls a remote ResolverServer.
type ResolverClient struct {
	cc grpc.ClientConnInterface
}

func NewResolverClient(cc grpc.ClientConnInterface) *ResolverClient {
	return &ResolverClient{cc: cc}
}

func (c *ResolverClient) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("encoding resolve request: %w", err)
	}
	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fullMethod, in, out); err != nil {
		return nil, err
	}
	return responseFromStruct(out), nil
}

// GRPCResolver adapts a ResolverClient to internal/exec's
// ExternalResolver interface.
type GRPCResolver struct {
	Client *ResolverClient
}

func (g *GRPCResolver) Resolve(functionName string, inputs []value.Value) (value.Value, error) {
	resp, err := g.Client.Resolve(context.Background(), &ResolveRequest{Function: functionName, Args: inputs})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}
