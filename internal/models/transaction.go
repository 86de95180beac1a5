package models

import "github.com/shopspring/decimal"

// Transaction is the persisted row of the composite-key transaction collection.
// Nil optional fields are omitted from the store, never written as null.
type Transaction struct {
	MemberID       string          `db:"member_id"`
	TransactionID  string          `db:"transaction_id"`
	Amount         decimal.Decimal `db:"amount"`
	Timestamp      string          `db:"timestamp"`
	SignatureS3Key *string         `db:"signature_s3_key"`
	ServiceNotes   *string         `db:"service_notes"`
}

// LegacyTransaction is a row of the single-key transaction collection. Every column is
// nullable and amount is kept textual because real data holds malformed values.
type LegacyTransaction struct {
	TransactionID  *string `db:"transaction_id"`
	MemberID       *string `db:"member_id"`
	Amount         *string `db:"amount"`
	Timestamp      *string `db:"timestamp"`
	SignatureS3Key *string `db:"signature_s3_key"`
	ServiceNotes   *string `db:"service_notes"`
}
