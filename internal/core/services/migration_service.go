package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/core/migration"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
)

const defaultSampleSize = 5

// migrationServiceImpl is single-threaded and one-shot per call. Writes are upserts by
// (owner, transaction), so a rerun over the same legacy data converges to the same state.
type migrationServiceImpl struct {
	BaseService
	source portsrepo.LegacyTransactionReader
	dest   portsrepo.TransactionRepositoryFacade
	now    func() time.Time
	newID  func(domain.RawLegacyRecord) string
}

// MigrationOption is a functional option for configuring the migration service
type MigrationOption func(*migrationServiceImpl)

// WithMigrationClock overrides the time used for missing timestamps.
func WithMigrationClock(now func() time.Time) MigrationOption {
	return func(s *migrationServiceImpl) {
		s.now = now
	}
}

// WithMigrationIDGenerator overrides how missing transaction IDs are derived. The default
// derives them from the record's content so reruns upsert the same keys.
func WithMigrationIDGenerator(newID func(domain.RawLegacyRecord) string) MigrationOption {
	return func(s *migrationServiceImpl) {
		s.newID = newID
	}
}

// NewMigrationService creates a migrator reading source and writing dest.
func NewMigrationService(source portsrepo.LegacyTransactionReader, dest portsrepo.TransactionRepositoryFacade, options ...MigrationOption) portssvc.MigrationSvc {
	svc := &migrationServiceImpl{
		source: source,
		dest:   dest,
		now:    time.Now,
		newID:  migration.DeriveTransactionID,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MigrationSvc = (*migrationServiceImpl)(nil)

func (s *migrationServiceImpl) Migrate(ctx context.Context, opts portssvc.MigrationOptions) (*migration.Report, error) {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = migration.DefaultStrategies
	}
	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}

	records, err := s.scan(ctx, opts)
	if err != nil {
		s.LogError(ctx, err, "Legacy scan failed, nothing migrated")
		return nil, fmt.Errorf("failed to scan legacy transactions: %w", err)
	}

	report := &migration.Report{
		DryRun:        opts.DryRun,
		Strategies:    strategies,
		Total:         len(records),
		Repaired:      []migration.Repair{},
		Skips:         []migration.SkippedItem{},
		VerifiedCount: -1,
		Sample:        []domain.Transaction{},
	}
	s.LogInfo(ctx, "Legacy scan complete",
		slog.Int("records", len(records)),
		slog.Any("strategies", strategies),
		slog.Bool("dry_run", opts.DryRun))

	normalizer := migration.Normalizer{Strategies: strategies, Now: s.now, NewID: s.newID}
	written := make(map[[2]string]struct{}, len(records))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("migration interrupted after %d of %d records: %w", report.Migrated+report.Skipped, report.Total, err)
		}

		txn, repairs, skip := normalizer.Normalize(rec)
		if skip != nil {
			s.skip(ctx, report, *skip)
			continue
		}

		if !opts.DryRun {
			if err := s.dest.SaveTransaction(ctx, txn); err != nil {
				s.skip(ctx, report, migration.SkippedItem{TransactionID: txn.TransactionID, Reason: fmt.Sprintf("write failed: %v", err)})
				continue
			}
		}

		for _, r := range repairs {
			s.LogInfo(ctx, "Repaired legacy record",
				slog.String("transaction_id", r.TransactionID),
				slog.String("field", r.Field),
				slog.String("detail", r.Detail))
		}
		report.Repaired = append(report.Repaired, repairs...)
		report.Migrated++
		written[[2]string{txn.OwnerID, txn.TransactionID}] = struct{}{}
		if opts.DryRun && len(report.Sample) < sampleSize {
			report.Sample = append(report.Sample, txn)
		}
	}
	report.DistinctKeys = len(written)

	if opts.DryRun {
		s.LogInfo(ctx, "Dry run complete", tallyAttrs(report)...)
		return report, nil
	}

	if err := s.verify(ctx, report, written, sampleSize); err != nil {
		return report, err
	}
	s.LogInfo(ctx, "Migration complete", tallyAttrs(report)...)
	return report, nil
}

func (s *migrationServiceImpl) scan(ctx context.Context, opts portssvc.MigrationOptions) ([]domain.RawLegacyRecord, error) {
	if opts.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ScanTimeout)
		defer cancel()
	}
	return s.source.ScanLegacyTransactions(ctx, portsrepo.ScanOptions{PageSize: opts.PageSize})
}

func (s *migrationServiceImpl) skip(ctx context.Context, report *migration.Report, item migration.SkippedItem) {
	s.LogWarn(ctx, "Skipped legacy record",
		slog.String("transaction_id", item.TransactionID),
		slog.String("reason", item.Reason))
	report.Skipped++
	report.Skips = append(report.Skips, item)
}

// verify runs a count-only query of the destination and reads it back to check that every key
// written in this run is present. It also takes the sample from the read-back.
func (s *migrationServiceImpl) verify(ctx context.Context, report *migration.Report, written map[[2]string]struct{}, sampleSize int) error {
	count, err := s.dest.CountTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Verification count failed")
		return fmt.Errorf("migrated %d records but verification failed: %w", report.Migrated, err)
	}
	report.VerifiedCount = count

	txns, err := s.dest.ScanTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read back migrated transactions")
		return fmt.Errorf("failed to read back migrated transactions: %w", err)
	}
	migrated := make([]domain.Transaction, 0, len(written))
	for _, t := range txns {
		if _, ok := written[[2]string{t.OwnerID, t.TransactionID}]; ok {
			migrated = append(migrated, t)
		}
	}
	report.KeysFound = len(migrated)
	report.Verified = report.KeysFound == report.DistinctKeys
	if !report.Verified {
		s.LogWarn(ctx, "Written keys missing from destination",
			slog.Int("keys_found", report.KeysFound),
			slog.Int("distinct_keys", report.DistinctKeys))
	}
	if extra := report.ExtraItems(); extra > 0 {
		s.LogInfo(ctx, "Destination holds items not written by this run",
			slog.Int("extra_items", extra),
			slog.Int("verified_count", count))
	}

	domain.SortByTimestamp(migrated)
	if len(migrated) > sampleSize {
		migrated = migrated[:sampleSize]
	}
	report.Sample = migrated
	return nil
}

func tallyAttrs(r *migration.Report) []any {
	return []any{
		slog.Int("migrated", r.Migrated),
		slog.Int("skipped", r.Skipped),
		slog.Int("total", r.Total),
		slog.Int("repairs", len(r.Repaired)),
		slog.Int("verified_count", r.VerifiedCount),
	}
}
