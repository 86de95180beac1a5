package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MemberReader defines read operations for member data
type MemberReader interface {
	// FindMemberByID returns apperrors.ErrNotFound when the member does not exist.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// ListMembers returns every member. Order is unspecified.
	ListMembers(ctx context.Context) ([]domain.Member, error)
}

// MemberWriter defines write operations for member data
type MemberWriter interface {
	// CreateMemberIfAbsent stores member only if no member with the same ID exists.
	// It returns apperrors.ErrDuplicateMember otherwise.
	CreateMemberIfAbsent(ctx context.Context, member domain.Member) error

	// UpdateMemberProfile changes the mutable profile fields, never the balance.
	UpdateMemberProfile(ctx context.Context, memberID string, name string, enrollmentDate time.Time) error

	// DeleteMember removes the member record only; transactions are the caller's concern.
	DeleteMember(ctx context.Context, memberID string) error
}

// MemberBalanceWriter is the write path to the materialized balance.
// Only the ledger service may hold this interface.
type MemberBalanceWriter interface {
	// AddToMemberBalance atomically adds delta to the stored balance and returns the new balance.
	// It must be a single store-side update, never a read-modify-write.
	AddToMemberBalance(ctx context.Context, memberID string, delta decimal.Decimal) (decimal.Decimal, error)

	// SetMemberBalance overwrites the stored balance. Used by reconciliation only.
	SetMemberBalance(ctx context.Context, memberID string, balance decimal.Decimal) error
}

// MemberRepositoryFacade combines all member-related repository interfaces
type MemberRepositoryFacade interface {
	MemberReader
	MemberWriter
	MemberBalanceWriter
}
