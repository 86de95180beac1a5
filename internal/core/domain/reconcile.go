package domain

import "github.com/shopspring/decimal"

// BalanceDrift compares a member's stored balance with the sum of its transactions.
type BalanceDrift struct {
	MemberID         string          `json:"memberID"`
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	TransactionCount int             `json:"transactionCount"`
	Repaired         bool            `json:"repaired"`
}

// InSync reports whether the stored balance matches the ledger.
func (d BalanceDrift) InSync() bool {
	return d.StoredBalance.Equal(d.LedgerBalance)
}

// Difference is ledger minus stored balance.
func (d BalanceDrift) Difference() decimal.Decimal {
	return d.LedgerBalance.Sub(d.StoredBalance)
}

// MemberSummary carries the identifying fields shown before an irreversible member action.
type MemberSummary struct {
	Member           Member `json:"member"`
	TransactionCount int    `json:"transactionCount"`
}
