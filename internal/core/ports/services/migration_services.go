package services

import (
	"context"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/migration"
)

// MigrationOptions controls one run of the schema migrator.
type MigrationOptions struct {
	Strategies  []migration.Strategy
	DryRun      bool
	PageSize    int
	ScanTimeout time.Duration
	SampleSize  int
}

// MigrationSvc moves legacy transactions into the composite-key collection.
type MigrationSvc interface {
	// Migrate returns a nil report only when the legacy scan fails.
	Migrate(ctx context.Context, opts MigrationOptions) (*migration.Report, error)
}
