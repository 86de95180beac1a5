package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Standard notes written by the ledger service.
const (
	NotesInitialTopUp      = "initial top-up"
	NotesBalanceAdjustment = "balance adjustment"
)

// TimestampLayout is the layout used for timestamps written by this service.
const TimestampLayout = time.RFC3339Nano

// Transaction is a single immutable ledger line attributed to one member.
// A negative Amount is a consumption (debit), a positive Amount a top-up (credit).
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"` // member_id in the persisted schema
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     string          `json:"timestamp"`              // ISO-8601, kept verbatim from the writer
	SignatureRef  string          `json:"signatureRef,omitempty"` // Blob key, empty when absent
	Notes         string          `json:"notes,omitempty"`
}

// IsDebit reports whether the transaction consumes balance.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Validate checks the fields a well-formed stored transaction must carry.
// Zero amounts are allowed here because migrated legacy records may carry them.
func (t Transaction) Validate() error {
	if t.TransactionID == "" {
		return errors.New("transaction ID is required")
	}
	if t.OwnerID == "" {
		return errors.New("owner ID is required")
	}
	if t.Timestamp == "" {
		return errors.New("timestamp is required")
	}
	return nil
}

// Time parses Timestamp. Older writers stored local timestamps without a zone offset;
// those values are read as UTC.
func (t Transaction) Time() (time.Time, error) {
	return ParseTimestamp(t.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp in any of the layouts seen in the ledger.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// SumAmounts returns the sum of the transaction amounts.
func SumAmounts(txns []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// SortByTimestamp orders transactions oldest first. Unparseable timestamps sort last,
// ties keep transaction ID order so the result is deterministic.
func SortByTimestamp(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		ti, erri := txns[i].Time()
		tj, errj := txns[j].Time()
		switch {
		case erri != nil && errj != nil:
			return txns[i].TransactionID < txns[j].TransactionID
		case erri != nil:
			return false
		case errj != nil:
			return true
		case ti.Equal(tj):
			return txns[i].TransactionID < txns[j].TransactionID
		}
		return ti.Before(tj)
	})
}
