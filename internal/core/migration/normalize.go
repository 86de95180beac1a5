package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/google/uuid"
)

// legacyIDNamespace scopes name-based ids derived for legacy records without a transaction_id.
var legacyIDNamespace = uuid.MustParse("5f0c7a3e-9b1d-4e2a-8c6f-2d4b7e9a1c30")

// DeriveTransactionID returns a name-based (SHA-1) UUID over every field of rec, so the same
// record gets the same id on every run. Absent and empty fields are told apart.
func DeriveTransactionID(rec domain.RawLegacyRecord) string {
	var b strings.Builder
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"member_id", rec.MemberID},
		{"owner_id", rec.OwnerID},
		{"amount", rec.Amount},
		{"timestamp", rec.Timestamp},
		{"signature_s3_key", rec.SignatureKey},
		{"service_notes", rec.ServiceNotes},
	} {
		b.WriteString(f.name)
		if f.value == nil {
			b.WriteString("\x00")
		} else {
			b.WriteString("=")
			b.WriteString(*f.value)
		}
		b.WriteString("\x1f")
	}
	return uuid.NewSHA1(legacyIDNamespace, []byte(b.String())).String()
}

// Repair records one field the migrator filled in or rewrote.
type Repair struct {
	TransactionID string `json:"transactionID"`
	Field         string `json:"field"`
	Detail        string `json:"detail"`
}

// SkippedItem is a legacy record that was not migrated.
type SkippedItem struct {
	TransactionID string `json:"transactionID"`
	Reason        string `json:"reason"`
}

// Normalizer turns raw legacy records into strict transactions.
type Normalizer struct {
	Strategies []Strategy
	Now        func() time.Time
	// NewID names a record without a transaction_id. Nil means DeriveTransactionID.
	NewID func(domain.RawLegacyRecord) string
}

// Normalize validates rec. It returns the transaction and its repairs, or a skip.
func (n Normalizer) Normalize(rec domain.RawLegacyRecord) (domain.Transaction, []Repair, *SkippedItem) {
	var repairs []Repair

	txID := domain.Deref(rec.TransactionID)
	if txID == "" {
		newID := n.NewID
		if newID == nil {
			newID = DeriveTransactionID
		}
		txID = newID(rec)
		repairs = append(repairs, Repair{TransactionID: txID, Field: "transaction_id", Detail: "derived from record content"})
	}

	amount, err := rec.ParseAmount()
	if err != nil {
		return domain.Transaction{}, nil, &SkippedItem{TransactionID: txID, Reason: err.Error()}
	}
	if domain.Deref(rec.Amount) == "" {
		repairs = append(repairs, Repair{TransactionID: txID, Field: "amount", Detail: "missing, recorded as 0"})
	}

	owner, strategy, ok := resolveOwner(rec, txID, n.Strategies)
	if !ok {
		return domain.Transaction{}, nil, &SkippedItem{TransactionID: txID, Reason: "owner could not be resolved"}
	}
	if strategy != StrategyExplicit {
		repairs = append(repairs, Repair{
			TransactionID: txID,
			Field:         "member_id",
			Detail:        fmt.Sprintf("set to %s by %s strategy", owner, strategy),
		})
	}

	timestamp := domain.Deref(rec.Timestamp)
	if timestamp == "" {
		timestamp = n.Now().UTC().Format(domain.TimestampLayout)
		repairs = append(repairs, Repair{TransactionID: txID, Field: "timestamp", Detail: "missing, set to migration time"})
	}

	txn := domain.Transaction{
		TransactionID: txID,
		OwnerID:       owner,
		Amount:        amount,
		Timestamp:     timestamp,
		SignatureRef:  domain.Deref(rec.SignatureKey),
		Notes:         domain.Deref(rec.ServiceNotes),
	}
	if err := txn.Validate(); err != nil {
		return domain.Transaction{}, nil, &SkippedItem{TransactionID: txID, Reason: err.Error()}
	}
	return txn, repairs, nil
}
