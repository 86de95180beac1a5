package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spa_ledger/internal/models"
	"github.com/SscSPs/spa_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `member_id, transaction_id, amount, timestamp, signature_s3_key, service_notes`

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	modelTxns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		var t models.Transaction
		err := row.Scan(&t.MemberID, &t.TransactionID, &t.Amount, &t.Timestamp, &t.SignatureS3Key, &t.ServiceNotes)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactions(modelTxns), nil
}

// SaveTransaction upserts the transaction by (member_id, transaction_id).
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	t := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id, transaction_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			timestamp = EXCLUDED.timestamp,
			signature_s3_key = EXCLUDED.signature_s3_key,
			service_notes = EXCLUDED.service_notes;
	`
	_, err := r.Pool.Exec(ctx, query, t.MemberID, t.TransactionID, t.Amount, t.Timestamp, t.SignatureS3Key, t.ServiceNotes)
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("save transaction %s/%s", t.MemberID, t.TransactionID), err)
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, ownerID, transactionID string) error {
	query := `DELETE FROM transactions WHERE member_id = $1 AND transaction_id = $2;`
	if _, err := r.Pool.Exec(ctx, query, ownerID, transactionID); err != nil {
		return apperrors.StoreError(fmt.Sprintf("delete transaction %s/%s", ownerID, transactionID), err)
	}
	return nil
}

// ListTransactionsByOwner retrieves every transaction of one member.
func (r *PgxTransactionRepository) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE member_id = $1 ORDER BY transaction_id;`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.StoreError(fmt.Sprintf("query transactions of %s", ownerID), err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, apperrors.StoreError(fmt.Sprintf("scan transactions of %s", ownerID), err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) ScanTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions;`)
	if err != nil {
		return nil, apperrors.StoreError("query transactions", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, apperrors.StoreError("scan transactions", err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) CountTransactions(ctx context.Context) (int, error) {
	var count int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions;`).Scan(&count); err != nil {
		return 0, apperrors.StoreError("count transactions", err)
	}
	return count, nil
}
