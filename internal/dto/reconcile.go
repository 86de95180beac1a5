package dto

import (
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceDriftResponse reports a mismatch between a stored balance and the ledger.
type BalanceDriftResponse struct {
	MemberID         string          `json:"memberID"`
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	Difference       decimal.Decimal `json:"difference"`
	TransactionCount int             `json:"transactionCount"`
	InSync           bool            `json:"inSync"`
	Repaired         bool            `json:"repaired"`
}

// ReconcileAllResponse lists every drifted member.
type ReconcileAllResponse struct {
	Drifted []BalanceDriftResponse `json:"drifted"`
	Repair  bool                   `json:"repair"`
}

// ToBalanceDriftResponse converts a domain.BalanceDrift
func ToBalanceDriftResponse(d domain.BalanceDrift) BalanceDriftResponse {
	return BalanceDriftResponse{
		MemberID:         d.MemberID,
		StoredBalance:    d.StoredBalance,
		LedgerBalance:    d.LedgerBalance,
		Difference:       d.Difference(),
		TransactionCount: d.TransactionCount,
		InSync:           d.InSync(),
		Repaired:         d.Repaired,
	}
}
