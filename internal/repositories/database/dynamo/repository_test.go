package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/models"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo records requests and replays canned responses. Unused API methods panic
// through the nil embedded interface.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	getOut    *dynamodb.GetItemOutput
	putErr    error
	puts      []*dynamodb.PutItemInput
	updateOut *dynamodb.UpdateItemOutput
	updateErr error
	updates   []*dynamodb.UpdateItemInput
	scanPages []*dynamodb.ScanOutput
	scans     []*dynamodb.ScanInput
	scanErr   error
	queryOut  []*dynamodb.QueryOutput
	queries   []*dynamodb.QueryInput
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, _ *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	if f.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return f.updateOut, nil
}

func (f *fakeDynamo) ScanWithContext(_ aws.Context, in *dynamodb.ScanInput, _ ...request.Option) (*dynamodb.ScanOutput, error) {
	copied := *in
	f.scans = append(f.scans, &copied)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	page := f.scanPages[0]
	f.scanPages = f.scanPages[1:]
	return page, nil
}

func (f *fakeDynamo) QueryWithContext(_ aws.Context, in *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	copied := *in
	f.queries = append(f.queries, &copied)
	page := f.queryOut[0]
	f.queryOut = f.queryOut[1:]
	return page, nil
}

func conditionFailed() error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
}

func providerFor(client *fakeDynamo) portsrepo.RepositoryProvider {
	return NewRepositoryProvider(client, DefaultTables())
}

func TestMemberItemRoundTrip(t *testing.T) {
	enrolled := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	it := memberToItem(models.Member{
		MemberID:       "00042",
		Name:           "Alice",
		EnrollmentDate: enrolled,
		Balance:        decimal.RequireFromString("150.50"),
	})

	assert.Equal(t, "00042", aws.StringValue(it[attrCardID].S))
	assert.Equal(t, "2023-04-01", aws.StringValue(it[attrTopUpDate].S))
	assert.Equal(t, "150.5", aws.StringValue(it[attrBalance].N))

	back, err := itemToMember(it)
	require.NoError(t, err)
	assert.Equal(t, "Alice", back.Name)
	assert.True(t, back.Balance.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, back.EnrollmentDate.Equal(enrolled))
}

func TestItemToMember_MissingKey(t *testing.T) {
	_, err := itemToMember(item{attrName: stringValue("nobody")})
	assert.Error(t, err)
}

func TestItemToRawLegacy_KeepsFieldsUninterpreted(t *testing.T) {
	raw := itemToRawLegacy(item{
		attrTransactionID: stringValue("t1"),
		attrOwnerID:       stringValue("00042"),
		attrAmount:        {N: aws.String("-50")},
		attrServiceNotes:  {NULL: aws.Bool(true)},
	})

	assert.Equal(t, "t1", domain.Deref(raw.TransactionID))
	assert.Nil(t, raw.MemberID)
	assert.Equal(t, "00042", domain.Deref(raw.OwnerID))
	assert.Equal(t, "-50", domain.Deref(raw.Amount))
	assert.Nil(t, raw.ServiceNotes)
	assert.Nil(t, raw.Timestamp)
}

func TestCreateMemberIfAbsent_Duplicate(t *testing.T) {
	client := &fakeDynamo{putErr: conditionFailed()}
	repo := providerFor(client).MemberRepo

	err := repo.CreateMemberIfAbsent(context.Background(), domain.Member{MemberID: "00042", Name: "Alice"})

	assert.ErrorIs(t, err, apperrors.ErrDuplicateMember)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "attribute_not_exists(#id)", aws.StringValue(client.puts[0].ConditionExpression))
}

func TestCreateMemberIfAbsent_StoreFailure(t *testing.T) {
	client := &fakeDynamo{putErr: errors.New("throttled")}
	err := providerFor(client).MemberRepo.CreateMemberIfAbsent(context.Background(), domain.Member{MemberID: "1"})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestFindMemberByID_NotFound(t *testing.T) {
	_, err := providerFor(&fakeDynamo{}).MemberRepo.FindMemberByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddToMemberBalance_UsesAtomicAdd(t *testing.T) {
	client := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{
		Attributes: item{attrBalance: {N: aws.String("75")}},
	}}

	balance, err := providerFor(client).MemberRepo.AddToMemberBalance(context.Background(), "00042", decimal.NewFromInt(-25))

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(75)))
	require.Len(t, client.updates, 1)
	in := client.updates[0]
	assert.Equal(t, "ADD #b :delta", aws.StringValue(in.UpdateExpression))
	assert.Equal(t, "-25", aws.StringValue(in.ExpressionAttributeValues[":delta"].N))
	assert.Equal(t, dynamodb.ReturnValueUpdatedNew, aws.StringValue(in.ReturnValues))
}

func TestAddToMemberBalance_MissingMember(t *testing.T) {
	client := &fakeDynamo{updateErr: conditionFailed()}
	_, err := providerFor(client).MemberRepo.AddToMemberBalance(context.Background(), "gone", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListTransactionsByOwner_FollowsPages(t *testing.T) {
	client := &fakeDynamo{queryOut: []*dynamodb.QueryOutput{
		{
			Items:            []item{transactionItem("00042", "t1", "10")},
			LastEvaluatedKey: transactionKey("00042", "t1"),
		},
		{
			Items: []item{transactionItem("00042", "t2", "-4")},
		},
	}}

	txns, err := providerFor(client).TransactionRepo.ListTransactionsByOwner(context.Background(), "00042")

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "t2", txns[1].TransactionID)
	require.Len(t, client.queries, 2)
	assert.Nil(t, client.queries[0].ExclusiveStartKey)
	assert.Equal(t, "t1", aws.StringValue(client.queries[1].ExclusiveStartKey[attrTransactionID].S))
	assert.True(t, aws.BoolValue(client.queries[0].ConsistentRead))
}

func TestCountTransactions_SumsPages(t *testing.T) {
	client := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Count: aws.Int64(3), LastEvaluatedKey: transactionKey("a", "b")},
		{Count: aws.Int64(2)},
	}}

	n, err := providerFor(client).TransactionRepo.CountTransactions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, dynamodb.SelectCount, aws.StringValue(client.scans[0].Select))
}

func TestScanLegacyTransactions_PageSizeAndError(t *testing.T) {
	client := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Items: []item{{attrTransactionID: stringValue("t1")}}},
	}}
	records, err := providerFor(client).LegacyRepo.ScanLegacyTransactions(context.Background(), portsrepo.ScanOptions{PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int64(50), aws.Int64Value(client.scans[0].Limit))
	assert.Equal(t, "spa-transactions", aws.StringValue(client.scans[0].TableName))

	failing := &fakeDynamo{scanErr: errors.New("timeout")}
	_, err = providerFor(failing).LegacyRepo.ScanLegacyTransactions(context.Background(), portsrepo.ScanOptions{})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func transactionItem(owner, id, amount string) item {
	return item{
		attrMemberID:      stringValue(owner),
		attrTransactionID: stringValue(id),
		attrAmount:        {N: aws.String(amount)},
		attrTimestamp:     stringValue("2024-01-01T09:00:00"),
	}
}
