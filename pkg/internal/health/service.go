// Package health serves the GRPC health check protocol
// (https://godoc.org/google.golang.org/grpc/health/grpc_health_v1)
// for probing the bridge, e.g. from Kubernetes.
package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	rpc "google.golang.org/grpc/health/grpc_health_v1"
)

// CheckFn reports whether the service is healthy.
type CheckFn func(ctx context.Context) bool

// Server is a GRPC health probe server.
type Server struct {
	ln      net.Listener
	checkFn CheckFn
}

// Listen binds the health probe server to addr.
func Listen(addr string, checkFn CheckFn) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error listening for health probes on %q: %w", addr, err)
	}
	return &Server{ln: ln, checkFn: checkFn}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve serves health checks until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	srv := grpc.NewServer(grpc.ConnectionTimeout(time.Second * 3))
	rpc.RegisterHealthServer(srv, &server{checkFn: s.checkFn})
	go func() {
		<-ctx.Done()
		srv.Stop()
	}()
	if err := srv.Serve(s.ln); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type server struct {
	rpc.UnimplementedHealthServer
	checkFn CheckFn
}

func (s *server) Check(ctx context.Context, _ *rpc.HealthCheckRequest) (*rpc.HealthCheckResponse, error) {
	status := rpc.HealthCheckResponse_NOT_SERVING
	if s.checkFn == nil || s.checkFn(ctx) {
		status = rpc.HealthCheckResponse_SERVING
	}
	return &rpc.HealthCheckResponse{Status: status}, nil
}
