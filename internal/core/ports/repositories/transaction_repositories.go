package repositories

import (
	"context"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
)

// TransactionReader defines read operations on the composite-key transaction collection.
type TransactionReader interface {
	// ListTransactionsByOwner returns every transaction of ownerID, following pagination
	// until the store reports no more pages. A partial result is never returned.
	ListTransactionsByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error)

	// ScanTransactions returns every transaction in the collection. Order is unspecified.
	ScanTransactions(ctx context.Context) ([]domain.Transaction, error)

	// CountTransactions runs a count-only query over the whole collection.
	CountTransactions(ctx context.Context) (int, error)
}

// TransactionWriter defines write operations on the composite-key transaction collection.
type TransactionWriter interface {
	// SaveTransaction upserts by (owner ID, transaction ID).
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes one transaction. Deleting a missing key is not an error.
	DeleteTransaction(ctx context.Context, ownerID, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
