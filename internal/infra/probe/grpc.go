package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCProber probes the service over the standard grpc.health.v1 protocol.
// Used when the prediction service is deployed behind gRPC.
type GRPCProber struct {
	target  string
	service string
	timeout time.Duration
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
}

// NewGRPCProber dials target and prepares a health client. service may be
// empty to query overall server health.
func NewGRPCProber(ctx context.Context, target, service string, timeout time.Duration) (*GRPCProber, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Parse target to determine if TLS is needed
	addr := target
	var opts []grpc.DialOption

	if strings.HasPrefix(target, "https://") || strings.HasSuffix(target, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		addr = strings.TrimPrefix(addr, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		addr = strings.TrimPrefix(addr, "http://")
	}

	opts = append(opts, grpc.WithBlock()) // Wait for connection

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial grpc endpoint %s: %w", addr, err)
	}

	return &GRPCProber{
		target:  target,
		service: service,
		timeout: timeout,
		conn:    conn,
		client:  healthpb.NewHealthClient(conn),
	}, nil
}

// Probe runs one health check RPC.
func (p *GRPCProber) Probe(ctx context.Context) Result {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Check(probeCtx, &healthpb.HealthCheckRequest{Service: p.service})
	latency := time.Since(start)
	if err != nil {
		return Result{Latency: latency, Err: fmt.Errorf("health check rpc: %w", err)}
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return Result{Latency: latency, Err: fmt.Errorf("service reported status %q", resp.GetStatus().String())}
	}

	return Result{Latency: latency}
}

// Close tears down the connection.
func (p *GRPCProber) Close() error {
	return p.conn.Close()
}
