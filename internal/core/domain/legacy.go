package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RawLegacyRecord is a transaction as read from the single-key legacy collection.
// Every field may be missing or null in real data; nil means "never set".
type RawLegacyRecord struct {
	TransactionID *string
	MemberID      *string
	OwnerID       *string // Written by a short-lived client under a different attribute name
	Amount        *string // Raw textual form, validated during normalization
	Timestamp     *string
	SignatureKey  *string
	ServiceNotes  *string
}

// Ident returns a best-effort identifier for logs and skip reports.
func (r RawLegacyRecord) Ident() string {
	if id := Deref(r.TransactionID); id != "" {
		return id
	}
	return "<missing transaction_id>"
}

// ParseAmount converts the raw amount to an exact decimal. A missing amount is zero.
func (r RawLegacyRecord) ParseAmount() (decimal.Decimal, error) {
	raw := strings.TrimSpace(Deref(r.Amount))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	return d, nil
}

// Deref returns the trimmed value of s, or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
