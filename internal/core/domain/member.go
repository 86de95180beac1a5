package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the persisted format of a member's enrollment date.
const DateLayout = "2006-01-02"

// Member is a spa card holder with a prepaid balance.
// Balance is a materialized view of the member's transactions; only the ledger service writes it.
type Member struct {
	MemberID       string          `json:"memberID"` // Card ID, immutable key
	Name           string          `json:"name"`
	EnrollmentDate time.Time       `json:"enrollmentDate"` // Date only, UTC midnight
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Matches reports whether term is a case-insensitive substring of the member ID or name.
// An empty term matches every member.
func (m Member) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.MemberID), term) ||
		strings.Contains(strings.ToLower(m.Name), term)
}

// ParseDate parses an enrollment date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// TruncateDate drops the time-of-day part of t, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
