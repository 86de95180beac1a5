package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is the persisted member row.
type Member struct {
	MemberID       string          `db:"member_id"`
	Name           string          `db:"name"`
	EnrollmentDate time.Time       `db:"enrollment_date"`
	Balance        decimal.Decimal `db:"balance"`
	CreatedAt      time.Time       `db:"created_at"`
}
