package dynamo

import (
	"context"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// LegacyTransactionRepository reads the single-key transaction table.
type LegacyTransactionRepository struct {
	BaseRepository
}

var _ portsrepo.LegacyTransactionReader = (*LegacyTransactionRepository)(nil)

func (r *LegacyTransactionRepository) ScanLegacyTransactions(ctx context.Context, opts portsrepo.ScanOptions) ([]domain.RawLegacyRecord, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.Tables.LegacyTransactions)}
	if opts.PageSize > 0 {
		input.Limit = aws.Int64(int64(opts.PageSize))
	}

	records := []domain.RawLegacyRecord{}
	err := r.scanAll(ctx, input, func(out *dynamodb.ScanOutput) error {
		for _, it := range out.Items {
			records = append(records, itemToRawLegacy(it))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
