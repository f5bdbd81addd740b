package remote_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/typeforge/synthcore/internal/remote"
	"github.com/typeforge/synthcore/internal/value"
)

type echoServer struct{}

func (echoServer) Resolve(ctx context.Context, req *remote.ResolveRequest) (*remote.ResolveResponse, error) {
	if len(req.Args) == 0 {
		return &remote.ResolveResponse{Value: value.Str(req.Function)}, nil
	}
	return &remote.ResolveResponse{Value: req.Args[0]}, nil
}

func dialBufconn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	remote.RegisterResolverServer(srv, echoServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPCResolverRoundTrip(t *testing.T) {
	conn := dialBufconn(t)
	client := remote.NewResolverClient(conn)
	resolver := &remote.GRPCResolver{Client: client}

	out, err := resolver.Resolve("lookupPrice", []value.Value{value.Number(42)})
	require.NoError(t, err)
	assert.Equal(t, value.Number(42), out)
}

func TestGRPCResolverNoArgsReturnsFunctionName(t *testing.T) {
	conn := dialBufconn(t)
	client := remote.NewResolverClient(conn)
	resolver := &remote.GRPCResolver{Client: client}

	out, err := resolver.Resolve("ping", nil)
	require.NoError(t, err)
	assert.Equal(t, value.Str("ping"), out)
}
