package dynamo

import (
	"context"
	"fmt"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spa_ledger/internal/utils/mapping"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// TransactionRepository stores transactions in the composite-key table
// (HASH member_id, RANGE transaction_id), so owner lookups are plain queries.
type TransactionRepository struct {
	BaseRepository
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := r.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.Tables.Transactions),
		Item:      transactionToItem(mapping.ToModelTransaction(txn)),
	})
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("put transaction %s/%s", txn.OwnerID, txn.TransactionID), err)
	}
	return nil
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, ownerID, transactionID string) error {
	_, err := r.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.Tables.Transactions),
		Key:       transactionKey(ownerID, transactionID),
	})
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("delete transaction %s/%s", ownerID, transactionID), err)
	}
	return nil
}

// ListTransactionsByOwner follows LastEvaluatedKey until the partition is exhausted.
func (r *TransactionRepository) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	var items []item
	err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.Tables.Transactions),
		KeyConditionExpression: aws.String("#m = :m"),
		ExpressionAttributeNames: map[string]*string{
			"#m": aws.String(attrMemberID),
		},
		ExpressionAttributeValues: item{":m": stringValue(ownerID)},
		ConsistentRead:            aws.Bool(true),
	}, func(out *dynamodb.QueryOutput) error {
		items = append(items, out.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return itemsToDomainTransactions(items)
}

func (r *TransactionRepository) ScanTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var items []item
	err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.Tables.Transactions)}, func(out *dynamodb.ScanOutput) error {
		items = append(items, out.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return itemsToDomainTransactions(items)
}

// CountTransactions sums Select=COUNT scan pages; no item data is transferred.
func (r *TransactionRepository) CountTransactions(ctx context.Context) (int, error) {
	total := 0
	err := r.scanAll(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.Tables.Transactions),
		Select:    aws.String(dynamodb.SelectCount),
	}, func(out *dynamodb.ScanOutput) error {
		total += int(aws.Int64Value(out.Count))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
