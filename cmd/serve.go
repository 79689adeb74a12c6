package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/jupiterclapton/cenackle/services/community-service/config"
	gql "github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/primary/graphql"
	healthcheck "github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/primary/health"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/core/services"
	"github.com/jupiterclapton/cenackle/services/community-service/internal/telemetry"
)

const (
	shutdownTimeout     = 5 * time.Second
	healthCheckInterval = 15 * time.Second
)

// corsOptions : X-User-Id n'est posé que par la gateway, jamais par un navigateur.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "baggage", "traceparent"},
		AllowCredentials: true,
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL HTTP server and the gRPC health endpoint",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// 1. Configuration + logger
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel))
	slog.Info("🚀 Starting Community Service", "env", cfg.Env, "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	// 2. Tracing
	tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OtelEndpoint)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Neo4j
	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(context.Background())

	repo := repository.NewNeo4jRepo(driver, cfg.Neo4jDatabase)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	// 4. NATS (optionnel)
	var publisher ports.EventPublisher = eventbroker.NoopPublisher{}
	if cfg.NatsUrl != "" {
		nc, err := nats.Connect(cfg.NatsUrl, nats.Name(cfg.ServiceName))
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer nc.Drain()
		publisher = eventbroker.NewNatsPublisher(nc)
		slog.Info("✅ Connected to NATS", "url", cfg.NatsUrl)
	} else {
		slog.Warn("NATS_URL not set, events disabled")
	}

	// 5. Domaine + schéma GraphQL
	svc := services.NewGraphService(repo, publisher, services.WithIDAttempts(cfg.PostIDMaxAttempts))
	schema, err := gql.NewSchema(svc)
	if err != nil {
		return fmt.Errorf("parse graphql schema: %w", err)
	}

	// 6. Chaîne HTTP : caller -> CORS -> OTEL
	h := gql.NewHandler(schema)
	h = cors.New(corsOptions(cfg.CORSOrigins)).Handler(h)
	h = otelhttp.NewHandler(h, "GraphQL-Community", otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	// 7. Health (gRPC + /healthz) suit la connectivité Neo4j
	healthServer := health.NewServer()
	monitor := healthcheck.NewMonitor(driver, healthServer, cfg.ServiceName)
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go monitor.Run(monitorCtx, healthCheckInterval)

	mux := http.NewServeMux()
	mux.Handle("/query", h)
	if cfg.Env != "prod" {
		mux.Handle("/", playground.Handler("Community playground", "/query"))
	}
	mux.Handle("/healthz", monitor.HTTPHandler())

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	// 8. Démarrage
	errCh := make(chan error, 2)
	go func() {
		slog.Info("📡 GraphQL listening", "port", cfg.HTTPPort)
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slog.Info("📡 gRPC health listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		slog.Error("Server error", "error", runErr)
	}

	// 9. Arrêt graceful
	slog.Info("🛑 Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	slog.Info("👋 Server exited")
	return runErr
}
