package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/spa_ledger/internal/core/ports/events"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spa_ledger/internal/platform/config"
	"github.com/SscSPs/spa_ledger/internal/platform/kafka"
	"github.com/SscSPs/spa_ledger/internal/repositories/blob"
	"github.com/SscSPs/spa_ledger/internal/repositories/database/dynamo"
	"github.com/SscSPs/spa_ledger/internal/repositories/database/memory"
	"github.com/SscSPs/spa_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/spa_ledger/pkg/awsclient"
	"github.com/SscSPs/spa_ledger/pkg/database"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
)

// MigrationsPath is where golang-migrate looks for the SQL schema.
const MigrationsPath = "file://migrations"

// Stores is the wired persistence layer plus a cleanup hook.
type Stores struct {
	Repos   portsrepo.RepositoryProvider
	closers []func()
}

// Close releases every connection opened by OpenStores, in reverse order.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores builds the record store selected by STORE_BACKEND and the blob store.
// Signatures go to S3 when SIGNATURE_BUCKET is set, otherwise they stay in memory.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	stores := &Stores{}

	var sess *session.Session
	awsSession := func() (*session.Session, error) {
		if sess != nil {
			return sess, nil
		}
		var err error
		sess, err = awsclient.NewSession(awsclient.Options{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.AWSEndpoint,
		})
		return sess, err
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, MigrationsPath, logger); err != nil {
			return nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		stores.closers = append(stores.closers, func() { database.ClosePgxPool(pool) })
		stores.Repos = pgsql.NewRepositoryProvider(pool)

	case config.BackendDynamoDB:
		s, err := awsSession()
		if err != nil {
			return nil, err
		}
		tables := dynamo.Tables{
			Members:            cfg.DynamoMembersTable,
			Transactions:       cfg.DynamoTransactionsTable,
			LegacyTransactions: cfg.DynamoLegacyTransactionsTable,
		}
		client := dynamodb.New(s)
		base := dynamo.BaseRepository{Client: client, Tables: tables}
		if err := base.EnsureTables(ctx); err != nil {
			return nil, err
		}
		stores.Repos = dynamo.NewRepositoryProvider(client, tables)

	default:
		store := memory.NewStore()
		stores.Repos = portsrepo.RepositoryProvider{
			MemberRepo:      store,
			TransactionRepo: store,
			LegacyRepo:      store,
		}
	}

	if cfg.SignatureBucket != "" {
		s, err := awsSession()
		if err != nil {
			return nil, err
		}
		stores.Repos.Blobs = blob.NewS3BlobStore(s3.New(s), cfg.SignatureBucket)
	} else {
		stores.Repos.Blobs = blob.NewMemoryBlobStore()
	}

	logger.Info("Stores ready",
		slog.String("backend", cfg.StoreBackend),
		slog.Bool("s3_signatures", cfg.SignatureBucket != ""))
	return stores, nil
}

// NewPublisher returns a Kafka publisher when brokers are configured and a no-op otherwise.
// The close function is never nil.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}, func() {}
	}
	p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	logger.Info("Publishing ledger events", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Error("Failed to close event publisher", slog.String("error", err.Error()))
		}
	}
}
