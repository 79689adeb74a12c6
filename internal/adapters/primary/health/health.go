// Package health publie l'état du service (gRPC Health Check + /healthz) en fonction de la connectivité Neo4j.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Checker est satisfait par neo4j.DriverWithContext.
type Checker interface {
	VerifyConnectivity(ctx context.Context) error
}

type Monitor struct {
	checker Checker
	server  *grpchealth.Server
	service string
	timeout time.Duration
	healthy atomic.Bool
	checked atomic.Bool
}

func NewMonitor(checker Checker, server *grpchealth.Server, service string) *Monitor {
	return &Monitor{checker: checker, server: server, service: service, timeout: 3 * time.Second}
}

// Check met à jour l'état une fois et le renvoie.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.checker.VerifyConnectivity(ctx)
	ok := err == nil
	prev := m.healthy.Swap(ok)
	// Premier check : on logge l'état quel qu'il soit
	if first := !m.checked.Swap(true); first || prev != ok {
		if ok {
			slog.Info("✅ Neo4j reachable")
		} else {
			slog.Warn("⚠️ Neo4j unreachable", "error", err)
		}
	}

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(m.service, status)
	return ok
}

// Run vérifie périodiquement jusqu'à l'annulation du contexte.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) Healthy() bool { return m.healthy.Load() }

// HTTPHandler : 200 si la base répond, 503 sinon (dernier état connu).
func (m *Monitor) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !m.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
