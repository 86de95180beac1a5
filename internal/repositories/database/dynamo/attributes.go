package dynamo

import (
	"fmt"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/models"
	"github.com/SscSPs/spa_ledger/internal/utils/mapping"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/shopspring/decimal"
)

// Attribute names as written by the deployed system.
const (
	attrCardID         = "card_id"
	attrName           = "name"
	attrTopUpDate      = "top_up_date"
	attrBalance        = "balance"
	attrCreatedAt      = "created_at"
	attrMemberID       = "member_id"
	attrOwnerID        = "owner_id"
	attrTransactionID  = "transaction_id"
	attrAmount         = "amount"
	attrTimestamp      = "timestamp"
	attrSignatureS3Key = "signature_s3_key"
	attrServiceNotes   = "service_notes"
)

type item = map[string]*dynamodb.AttributeValue

func stringValue(s string) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{S: aws.String(s)}
}

func numberValue(d decimal.Decimal) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{N: aws.String(d.String())}
}

// rawScalar returns the textual form of a string or number attribute.
// Missing, NULL and non-scalar attributes yield nil.
func rawScalar(it item, name string) *string {
	av, ok := it[name]
	if !ok || av == nil || aws.BoolValue(av.NULL) {
		return nil
	}
	if av.S != nil {
		return av.S
	}
	if av.N != nil {
		return av.N
	}
	return nil
}

func decimalAttr(it item, name string) (decimal.Decimal, error) {
	raw := rawScalar(it, name)
	if raw == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("attribute %s: %w", name, err)
	}
	return d, nil
}

func memberToItem(m models.Member) item {
	return item{
		attrCardID:    stringValue(m.MemberID),
		attrName:      stringValue(m.Name),
		attrTopUpDate: stringValue(m.EnrollmentDate.Format(domain.DateLayout)),
		attrBalance:   numberValue(m.Balance),
		attrCreatedAt: stringValue(m.CreatedAt.UTC().Format(domain.TimestampLayout)),
	}
}

func itemToMember(it item) (models.Member, error) {
	m := models.Member{
		MemberID: domain.Deref(rawScalar(it, attrCardID)),
		Name:     domain.Deref(rawScalar(it, attrName)),
	}
	if m.MemberID == "" {
		return m, fmt.Errorf("member item without %s", attrCardID)
	}

	balance, err := decimalAttr(it, attrBalance)
	if err != nil {
		return m, fmt.Errorf("member %s: %w", m.MemberID, err)
	}
	m.Balance = balance

	if raw := domain.Deref(rawScalar(it, attrTopUpDate)); raw != "" {
		if d, err := domain.ParseDate(raw); err == nil {
			m.EnrollmentDate = d
		} else if ts, err := domain.ParseTimestamp(raw); err == nil {
			m.EnrollmentDate = ts
		}
	}
	if raw := domain.Deref(rawScalar(it, attrCreatedAt)); raw != "" {
		if ts, err := domain.ParseTimestamp(raw); err == nil {
			m.CreatedAt = ts
		}
	}
	return m, nil
}

// transactionToItem omits optional attributes that are not set.
func transactionToItem(t models.Transaction) item {
	it := item{
		attrMemberID:      stringValue(t.MemberID),
		attrTransactionID: stringValue(t.TransactionID),
		attrAmount:        numberValue(t.Amount),
		attrTimestamp:     stringValue(t.Timestamp),
	}
	if t.SignatureS3Key != nil {
		it[attrSignatureS3Key] = stringValue(*t.SignatureS3Key)
	}
	if t.ServiceNotes != nil {
		it[attrServiceNotes] = stringValue(*t.ServiceNotes)
	}
	return it
}

func itemToTransaction(it item) (models.Transaction, error) {
	t := models.Transaction{
		MemberID:       domain.Deref(rawScalar(it, attrMemberID)),
		TransactionID:  domain.Deref(rawScalar(it, attrTransactionID)),
		Timestamp:      domain.Deref(rawScalar(it, attrTimestamp)),
		SignatureS3Key: rawScalar(it, attrSignatureS3Key),
		ServiceNotes:   rawScalar(it, attrServiceNotes),
	}
	amount, err := decimalAttr(it, attrAmount)
	if err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.TransactionID, err)
	}
	t.Amount = amount
	return t, nil
}

func transactionKey(ownerID, transactionID string) item {
	return item{
		attrMemberID:      stringValue(ownerID),
		attrTransactionID: stringValue(transactionID),
	}
}

// itemToRawLegacy keeps every attribute uninterpreted. Items written by an older client
// carry owner_id instead of member_id.
func itemToRawLegacy(it item) domain.RawLegacyRecord {
	return domain.RawLegacyRecord{
		TransactionID: rawScalar(it, attrTransactionID),
		MemberID:      rawScalar(it, attrMemberID),
		OwnerID:       rawScalar(it, attrOwnerID),
		Amount:        rawScalar(it, attrAmount),
		Timestamp:     rawScalar(it, attrTimestamp),
		SignatureKey:  rawScalar(it, attrSignatureS3Key),
		ServiceNotes:  rawScalar(it, attrServiceNotes),
	}
}

func itemsToDomainTransactions(items []item) ([]domain.Transaction, error) {
	txns := make([]domain.Transaction, 0, len(items))
	for _, it := range items {
		m, err := itemToTransaction(it)
		if err != nil {
			return nil, err
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
	}
	return txns, nil
}

func dateValue(t time.Time) *dynamodb.AttributeValue {
	return stringValue(t.Format(domain.DateLayout))
}
