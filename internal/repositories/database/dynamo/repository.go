package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Tables names the DynamoDB tables backing each collection.
type Tables struct {
	Members            string // HASH card_id
	Transactions       string // HASH member_id, RANGE transaction_id
	LegacyTransactions string // HASH transaction_id
}

// DefaultTables returns the table names used by the deployed system.
func DefaultTables() Tables {
	return Tables{
		Members:            "spa-members",
		Transactions:       "spa-transactions-v2",
		LegacyTransactions: "spa-transactions",
	}
}

// BaseRepository provides common functionality for all DynamoDB repositories
type BaseRepository struct {
	Client dynamodbiface.DynamoDBAPI
	Tables Tables
}

// NewRepositoryProvider wires every repository over one DynamoDB client.
func NewRepositoryProvider(client dynamodbiface.DynamoDBAPI, tables Tables) portsrepo.RepositoryProvider {
	base := BaseRepository{Client: client, Tables: tables}
	return portsrepo.RepositoryProvider{
		MemberRepo:      &MemberRepository{BaseRepository: base},
		TransactionRepo: &TransactionRepository{BaseRepository: base},
		LegacyRepo:      &LegacyTransactionRepository{BaseRepository: base},
	}
}

// scanAll runs a scan to completion, following LastEvaluatedKey, and calls visit for every page.
func (r *BaseRepository) scanAll(ctx context.Context, input *dynamodb.ScanInput, visit func(*dynamodb.ScanOutput) error) error {
	for {
		out, err := r.Client.ScanWithContext(ctx, input)
		if err != nil {
			return apperrors.StoreError(fmt.Sprintf("scan %s", aws.StringValue(input.TableName)), err)
		}
		if err := visit(out); err != nil {
			return err
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// queryAll runs a query to completion, following LastEvaluatedKey.
func (r *BaseRepository) queryAll(ctx context.Context, input *dynamodb.QueryInput, visit func(*dynamodb.QueryOutput) error) error {
	for {
		out, err := r.Client.QueryWithContext(ctx, input)
		if err != nil {
			return apperrors.StoreError(fmt.Sprintf("query %s", aws.StringValue(input.TableName)), err)
		}
		if err := visit(out); err != nil {
			return err
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}

func isResourceInUse(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException
}

// EnsureTables creates any missing table with the expected key schema and waits until
// it is active. Existing tables are left untouched.
func (r *BaseRepository) EnsureTables(ctx context.Context) error {
	inputs := []*dynamodb.CreateTableInput{
		{
			TableName:            aws.String(r.Tables.Members),
			KeySchema:            []*dynamodb.KeySchemaElement{hashKey(attrCardID)},
			AttributeDefinitions: []*dynamodb.AttributeDefinition{stringAttr(attrCardID)},
			BillingMode:          aws.String(dynamodb.BillingModePayPerRequest),
		},
		{
			TableName: aws.String(r.Tables.Transactions),
			KeySchema: []*dynamodb.KeySchemaElement{hashKey(attrMemberID), rangeKey(attrTransactionID)},
			AttributeDefinitions: []*dynamodb.AttributeDefinition{
				stringAttr(attrMemberID), stringAttr(attrTransactionID),
			},
			BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		},
	}

	for _, input := range inputs {
		_, err := r.Client.CreateTableWithContext(ctx, input)
		if err != nil && !isResourceInUse(err) {
			return apperrors.StoreError(fmt.Sprintf("create table %s", aws.StringValue(input.TableName)), err)
		}
		err = r.Client.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName})
		if err != nil {
			return apperrors.StoreError(fmt.Sprintf("wait for table %s", aws.StringValue(input.TableName)), err)
		}
	}
	return nil
}

func hashKey(name string) *dynamodb.KeySchemaElement {
	return &dynamodb.KeySchemaElement{AttributeName: aws.String(name), KeyType: aws.String(dynamodb.KeyTypeHash)}
}

func rangeKey(name string) *dynamodb.KeySchemaElement {
	return &dynamodb.KeySchemaElement{AttributeName: aws.String(name), KeyType: aws.String(dynamodb.KeyTypeRange)}
}

func stringAttr(name string) *dynamodb.AttributeDefinition {
	return &dynamodb.AttributeDefinition{AttributeName: aws.String(name), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)}
}
