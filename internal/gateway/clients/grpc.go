package clients

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient probes a running server over the gRPC health protocol.
type HealthClient struct {
	Health grpc_health_v1.HealthClient
	conn   *grpc.ClientConn
}

func NewHealthClient(addr string) (*HealthClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrapf(err, "health service connection to %s failed", addr)
	}
	return &HealthClient{
		Health: grpc_health_v1.NewHealthClient(conn),
		conn:   conn,
	}, nil
}

// Check returns nil when service reports SERVING.
func (c *HealthClient) Check(ctx context.Context, service string) error {
	resp, err := c.Health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return errors.Wrap(err, "health check failed")
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return errors.Errorf("service %q is %s", service, resp.GetStatus())
	}
	return nil
}

func (c *HealthClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
