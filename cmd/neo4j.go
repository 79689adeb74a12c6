package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jupiterclapton/cenackle/services/community-service/config"
)

const connectTimeout = 5 * time.Second

// connectNeo4j crée le driver puis vérifie la connectivité, avec un nombre borné de tentatives.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = verify(ctx, driver)
		if err == nil {
			slog.Info("✅ Connected to Neo4j", "uri", cfg.Neo4jURI, "attempt", attempt)
			return driver, nil
		}
		if attempt >= cfg.Neo4jConnMaxRetries {
			break
		}

		backoff := time.Duration(attempt) * 2 * time.Second
		slog.Warn("Neo4j not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			_ = driver.Close(context.Background())
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	_ = driver.Close(context.Background())
	return nil, fmt.Errorf("connect to neo4j after %d attempts: %w", cfg.Neo4jConnMaxRetries, err)
}

func verify(ctx context.Context, driver neo4j.DriverWithContext) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return driver.VerifyConnectivity(ctx)
}
