package mapping

import (
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
// Empty optional fields become nil so stores can omit them.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		MemberID:       d.OwnerID,
		TransactionID:  d.TransactionID,
		Amount:         d.Amount,
		Timestamp:      d.Timestamp,
		SignatureS3Key: optional(d.SignatureRef),
		ServiceNotes:   optional(d.Notes),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		OwnerID:       m.MemberID,
		Amount:        m.Amount,
		Timestamp:     m.Timestamp,
		SignatureRef:  domain.Deref(m.SignatureS3Key),
		Notes:         domain.Deref(m.ServiceNotes),
	}
}

// ToDomainTransactions converts a slice of model Transactions
func ToDomainTransactions(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToRawLegacyRecord converts a legacy row without interpreting any field.
func ToRawLegacyRecord(m models.LegacyTransaction) domain.RawLegacyRecord {
	return domain.RawLegacyRecord{
		TransactionID: m.TransactionID,
		MemberID:      m.MemberID,
		Amount:        m.Amount,
		Timestamp:     m.Timestamp,
		SignatureKey:  m.SignatureS3Key,
		ServiceNotes:  m.ServiceNotes,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
