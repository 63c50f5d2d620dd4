// Package health tracks dependency reachability and exposes it over HTTP and
// the standard gRPC health protocol.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const SERVICE_NAME = "pos"

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Report struct {
	OverallStatus string                   `json:"overall_status"`
	Services      map[string]ServiceStatus `json:"services"`
	Timestamp     time.Time                `json:"timestamp"`
}

func (r Report) Healthy() bool {
	return r.OverallStatus == "healthy"
}

type Monitor struct {
	mu     sync.RWMutex
	checks map[string]Pinger
	server *health.Server
}

func NewMonitor() *Monitor {
	return &Monitor{
		checks: map[string]Pinger{},
		server: health.NewServer(),
	}
}

func (m *Monitor) Add(name string, p Pinger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = p
}

func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	checks := make(map[string]Pinger, len(m.checks))
	for k, v := range m.checks {
		checks[k] = v
	}
	m.mu.RUnlock()
	sort.Strings(names)

	report := Report{OverallStatus: "healthy", Services: map[string]ServiceStatus{}, Timestamp: time.Now()}
	for _, name := range names {
		if err := checks[name].Ping(ctx); err != nil {
			report.Services[name] = ServiceStatus{Status: "unavailable", Message: err.Error()}
			report.OverallStatus = "degraded"
			continue
		}
		report.Services[name] = ServiceStatus{Status: "healthy", Message: "Service is responding"}
	}
	return report
}

// Refresh runs the checks once and publishes the result on the gRPC health service.
func (m *Monitor) Refresh(ctx context.Context) Report {
	report := m.Check(ctx)
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !report.Healthy() {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(SERVICE_NAME, status)
	return report
}

// Watch refreshes the gRPC serving status every interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval/2)
		report := m.Refresh(checkCtx)
		cancel()
		if !report.Healthy() {
			log.WithField("services", report.Services).Warn("dependencies degraded")
		}
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Register adds the health and reflection services to s.
func (m *Monitor) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, m.server)
	reflection.Register(s)
}

func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}

func (m *Monitor) DetailedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		report := m.Check(ctx)
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
