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

const defaultLegacyPageSize = 500

type PgxLegacyTransactionRepository struct {
	BaseRepository
}

func newPgxLegacyTransactionRepository(pool *pgxpool.Pool) *PgxLegacyTransactionRepository {
	return &PgxLegacyTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LegacyTransactionReader = (*PgxLegacyTransactionRepository)(nil)

// ScanLegacyTransactions pages through transactions_legacy by ctid using keyset pagination,
// since transaction_id may be null in damaged rows. All pages are read in one repeatable-read
// transaction so ctids stay stable between pages.
func (r *PgxLegacyTransactionRepository) ScanLegacyTransactions(ctx context.Context, opts portsrepo.ScanOptions) ([]domain.RawLegacyRecord, error) {
	var records []domain.RawLegacyRecord
	err := r.ReadInSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		records, err = r.scanPages(ctx, tx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PgxLegacyTransactionRepository) scanPages(ctx context.Context, tx pgx.Tx, opts portsrepo.ScanOptions) ([]domain.RawLegacyRecord, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultLegacyPageSize
	}

	const columns = `ctid::text, transaction_id, member_id, amount, timestamp, signature_s3_key, service_notes`
	firstPage := `SELECT ` + columns + ` FROM transactions_legacy ORDER BY ctid LIMIT $1;`
	nextPage := `SELECT ` + columns + ` FROM transactions_legacy WHERE ctid > $2::tid ORDER BY ctid LIMIT $1;`

	records := []domain.RawLegacyRecord{}
	cursor := ""
	for {
		var rows pgx.Rows
		var err error
		if cursor == "" {
			rows, err = tx.Query(ctx, firstPage, pageSize)
		} else {
			rows, err = tx.Query(ctx, nextPage, pageSize, cursor)
		}
		if err != nil {
			return nil, apperrors.StoreError("query legacy transactions", err)
		}

		type page struct {
			ctid string
			row  models.LegacyTransaction
		}
		rowsPage, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (page, error) {
			var p page
			err := row.Scan(&p.ctid, &p.row.TransactionID, &p.row.MemberID, &p.row.Amount,
				&p.row.Timestamp, &p.row.SignatureS3Key, &p.row.ServiceNotes)
			return p, err
		})
		if err != nil {
			return nil, apperrors.StoreError(fmt.Sprintf("scan legacy transactions after %q", cursor), err)
		}

		for _, p := range rowsPage {
			records = append(records, mapping.ToRawLegacyRecord(p.row))
		}
		if len(rowsPage) < pageSize {
			return records, nil
		}
		cursor = rowsPage[len(rowsPage)-1].ctid
	}
}
