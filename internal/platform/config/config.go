package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StoreBackend  string
	DatabaseURL   string
	EnableDBCheck bool

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string // LocalStack or DynamoDB Local

	DynamoMembersTable            string
	DynamoTransactionsTable       string
	DynamoLegacyTransactionsTable string
	SignatureBucket               string // Empty keeps signatures in memory

	KafkaBrokers []string // Empty disables event publication
	KafkaTopic   string

	MigrationPageSize    int
	MigrationScanTimeout time.Duration
	MigrationStrategies  string

	RateLimit          string // ulule/limiter format, e.g. "100-M"
	CORSAllowedOrigins []string
	SignatureCacheTTL  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_BACKEND", BackendMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	viper.SetDefault("AWS_ENDPOINT", "")
	viper.SetDefault("DYNAMO_MEMBERS_TABLE", "spa-members")
	viper.SetDefault("DYNAMO_TRANSACTIONS_TABLE", "spa-transactions-v2")
	viper.SetDefault("DYNAMO_LEGACY_TRANSACTIONS_TABLE", "spa-transactions")
	viper.SetDefault("SIGNATURE_BUCKET", "")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "spa.transactions")
	viper.SetDefault("MIGRATION_PAGE_SIZE", 100)
	viper.SetDefault("MIGRATION_SCAN_TIMEOUT", "5m")
	viper.SetDefault("MIGRATION_STRATEGIES", "default")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SIGNATURE_CACHE_TTL", "10m")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                          viper.GetString("PORT"),
		IsProduction:                  viper.GetBool("IS_PRODUCTION"),
		StoreBackend:                  strings.ToLower(strings.TrimSpace(viper.GetString("STORE_BACKEND"))),
		DatabaseURL:                   viper.GetString("PGSQL_URL"),
		EnableDBCheck:                 viper.GetBool("ENABLE_DB_CHECK"),
		AWSRegion:                     viper.GetString("AWS_REGION"),
		AWSAccessKeyID:                viper.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:            viper.GetString("AWS_SECRET_ACCESS_KEY"),
		AWSEndpoint:                   viper.GetString("AWS_ENDPOINT"),
		DynamoMembersTable:            viper.GetString("DYNAMO_MEMBERS_TABLE"),
		DynamoTransactionsTable:       viper.GetString("DYNAMO_TRANSACTIONS_TABLE"),
		DynamoLegacyTransactionsTable: viper.GetString("DYNAMO_LEGACY_TRANSACTIONS_TABLE"),
		SignatureBucket:               viper.GetString("SIGNATURE_BUCKET"),
		KafkaBrokers:                  splitList(viper.GetString("KAFKA_BROKERS")),
		KafkaTopic:                    viper.GetString("KAFKA_TOPIC"),
		MigrationPageSize:             viper.GetInt("MIGRATION_PAGE_SIZE"),
		MigrationStrategies:           viper.GetString("MIGRATION_STRATEGIES"),
		RateLimit:                     viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:            splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	switch cfg.StoreBackend {
	case BackendMemory:
		slog.Warn("STORE_BACKEND is memory; data is lost on restart")
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_BACKEND is %s", BackendPostgres)
		}
	case BackendDynamoDB:
		if cfg.AWSRegion == "" {
			return nil, fmt.Errorf("AWS_REGION is required when STORE_BACKEND is %s", BackendDynamoDB)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}

	cfg.MigrationScanTimeout = durationOrDefault("MIGRATION_SCAN_TIMEOUT", 5*time.Minute)
	cfg.SignatureCacheTTL = durationOrDefault("SIGNATURE_CACHE_TTL", 10*time.Minute)

	if cfg.MigrationPageSize <= 0 {
		slog.Warn("Invalid MIGRATION_PAGE_SIZE, using default", slog.Int("value", cfg.MigrationPageSize))
		cfg.MigrationPageSize = 100
	}

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			slog.Warn("Invalid duration, using default",
				slog.String("key", key),
				slog.String("value", raw),
				slog.String("default", def.String()))
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
