package dto

import (
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyTransactionRequest records a consumption (negative) or top-up (positive).
type ApplyTransactionRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"decimal_nonzero"`
	SignatureRef string          `json:"signatureRef"` // Key returned by the signature upload, debits only
	Notes        string          `json:"notes" binding:"max=500"`
}

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	MemberID      string          `json:"memberID"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     string          `json:"timestamp"`
	SignatureRef  string          `json:"signatureRef,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// ListTransactionsResponse is a member's ledger, oldest first. Total is the sum of the whole
// ledger even when Transactions holds a single page.
type ListTransactionsResponse struct {
	MemberID     string                `json:"memberID"`
	Transactions []TransactionResponse `json:"transactions"`
	Total        decimal.Decimal       `json:"total"`
	NextToken    string                `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		MemberID:      t.OwnerID,
		Amount:        t.Amount,
		Timestamp:     t.Timestamp,
		SignatureRef:  t.SignatureRef,
		Notes:         t.Notes,
	}
}

// ToListTransactionsResponse converts a member's transactions
func ToListTransactionsResponse(memberID string, txns []domain.Transaction) ListTransactionsResponse {
	return ListTransactionsResponse{
		MemberID:     memberID,
		Transactions: ToTransactionResponses(txns),
		Total:        domain.SumAmounts(txns),
	}
}

// ToTransactionResponses converts a slice of transactions, never returning nil.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = ToTransactionResponse(t)
	}
	return out
}
