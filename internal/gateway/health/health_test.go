package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestCheckReportsEachDependency(t *testing.T) {
	m := NewMonitor()
	m.Add("store", PingFunc(func(ctx context.Context) error { return nil }))
	m.Add("redis", PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }))

	report := m.Check(context.Background())
	assert.False(t, report.Healthy())
	assert.Equal(t, "healthy", report.Services["store"].Status)
	assert.Equal(t, "unavailable", report.Services["redis"].Status)
	assert.Equal(t, "connection refused", report.Services["redis"].Message)
}

func TestDetailedHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMonitor()
	m.Add("store", PingFunc(func(ctx context.Context) error { return nil }))

	r := gin.New()
	r.GET("/health/detailed", m.DetailedHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "healthy", report.OverallStatus)

	m.Add("redis", PingFunc(func(ctx context.Context) error { return errors.New("down") }))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGRPCServingStatusFollowsRefresh(t *testing.T) {
	healthy := true
	m := NewMonitor()
	m.Add("store", PingFunc(func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}))

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	m.Register(s)
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	ctx := context.Background()
	m.Refresh(ctx)
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: SERVICE_NAME})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	healthy = false
	m.Refresh(ctx)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: SERVICE_NAME})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
