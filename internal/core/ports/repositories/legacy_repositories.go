package repositories

import (
	"context"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
)

// ScanOptions bounds a full-collection scan.
type ScanOptions struct {
	// PageSize is the number of items requested per store round trip. Zero uses the store default.
	PageSize int
}

// LegacyTransactionReader reads the single-key transaction collection written before the
// composite-key schema existed.
type LegacyTransactionReader interface {
	// ScanLegacyTransactions returns every legacy record, paging internally.
	// Cancellation and deadlines come from ctx.
	ScanLegacyTransactions(ctx context.Context, opts ScanOptions) ([]domain.RawLegacyRecord, error)
}
