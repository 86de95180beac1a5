package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionApplied is published after a transaction and its balance update both succeeded.
type TransactionApplied struct {
	TransactionID string          `json:"transaction_id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
