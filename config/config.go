package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string
	HTTPPort    string // GraphQL
	GRPCPort    string // Health Check
	LogLevel    string

	// Neo4j
	Neo4jURI            string // ex: bolt://localhost:7687
	Neo4jUser           string
	Neo4jPass           string
	Neo4jDatabase       string // vide = base par défaut du serveur
	Neo4jConnMaxRetries int
	PostIDMaxAttempts   int

	// Infrastructure
	NatsUrl string // vide = pas d'événements

	// HTTP
	CORSOrigins []string

	// Telemetry
	OtelEndpoint string // vide = pas d'export
}

// Load charge un éventuel .env puis la configuration depuis l'ENV.
// Appelé une seule fois, dans main.
func Load() (*Config, error) {
	// Absence du fichier = cas normal en conteneur
	_ = godotenv.Load()

	var parseErrs []error
	cfg := &Config{
		Env:                 getEnv("APP_ENV", "local"),
		ServiceName:         getEnv("SERVICE_NAME", "community-service"),
		HTTPPort:            getEnv("HTTP_PORT", "8085"),
		GRPCPort:            getEnv("GRPC_PORT", "50058"),
		LogLevel:            getEnv("LOG_LEVEL", ""),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPass:           getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:       getEnv("NEO4J_DATABASE", ""),
		Neo4jConnMaxRetries: getEnvInt("NEO4J_CONNECTION_MAX_RETRIES", 5, &parseErrs),
		PostIDMaxAttempts:   getEnvInt("POST_ID_MAX_ATTEMPTS", 5, &parseErrs),
		NatsUrl:             getEnv("NATS_URL", ""),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:19006"}),
		OtelEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.validate(parseErrs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validation basique pour éviter de démarrer avec une config cassée
// parseErrs : valeurs illisibles relevées au chargement, remontées avec le reste.
func (c *Config) validate(parseErrs ...error) error {
	errs := append([]error{}, parseErrs...)
	if c.Neo4jURI == "" {
		errs = append(errs, errors.New("NEO4J_URI is required"))
	}
	if c.Neo4jUser == "" {
		errs = append(errs, errors.New("NEO4J_USER is required"))
	}
	if c.Env == "prod" && c.Neo4jPass == "" {
		errs = append(errs, errors.New("NEO4J_PASSWORD is required in production"))
	}
	if c.Neo4jConnMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("NEO4J_CONNECTION_MAX_RETRIES must be >= 1, got %d", c.Neo4jConnMaxRetries))
	}
	if c.PostIDMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("POST_ID_MAX_ATTEMPTS must be >= 1, got %d", c.PostIDMaxAttempts))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug|info|warn|error", c.LogLevel))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

// Valeur non numérique : erreur ajoutée à errs, valeur par défaut conservée
func getEnvInt(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return fallback
	}
	return i
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
