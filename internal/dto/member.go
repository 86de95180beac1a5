package dto

import (
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateMemberRequest defines the data needed to enroll a new member.
type CreateMemberRequest struct {
	MemberID       string          `json:"memberID" binding:"required,max=64,excludesall=/"`
	Name           string          `json:"name" binding:"required,max=200"`
	EnrollmentDate string          `json:"enrollmentDate" binding:"required,datetime=2006-01-02"`
	InitialBalance decimal.Decimal `json:"initialBalance"` // Optional, zero records no transaction
}

// UpdateMemberRequest defines the editable profile fields of a member.
type UpdateMemberRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	EnrollmentDate string `json:"enrollmentDate" binding:"required,datetime=2006-01-02"`
}

// OverrideBalanceRequest sets a member's balance administratively.
type OverrideBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// MemberResponse defines the data returned for a member.
type MemberResponse struct {
	MemberID       string          `json:"memberID"`
	Name           string          `json:"name"`
	EnrollmentDate string          `json:"enrollmentDate"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// MemberSummaryResponse is returned when a destructive action needs confirmation.
type MemberSummaryResponse struct {
	Error            string          `json:"error"`
	MemberID         string          `json:"memberID"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
	Confirm          string          `json:"confirm"` // Value to pass as ?confirm=
}

// BalanceResponse carries a member's balance after a change.
type BalanceResponse struct {
	MemberID string          `json:"memberID"`
	Balance  decimal.Decimal `json:"balance"`
}

// ToMemberResponse converts a domain.Member to MemberResponse DTO
func ToMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		MemberID:       m.MemberID,
		Name:           m.Name,
		EnrollmentDate: m.EnrollmentDate.Format(domain.DateLayout),
		Balance:        m.Balance,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMemberListResponse converts a slice of domain.Member to a slice of MemberResponse DTOs
func ToMemberListResponse(members []domain.Member) []MemberResponse {
	list := make([]MemberResponse, len(members))
	for i := range members {
		list[i] = ToMemberResponse(&members[i])
	}
	return list
}

// ToMemberSummaryResponse builds the confirmation payload for a member.
func ToMemberSummaryResponse(s *domain.MemberSummary, msg string) MemberSummaryResponse {
	return MemberSummaryResponse{
		Error:            msg,
		MemberID:         s.Member.MemberID,
		Name:             s.Member.Name,
		Balance:          s.Member.Balance,
		TransactionCount: s.TransactionCount,
		Confirm:          s.Member.MemberID,
	}
}
