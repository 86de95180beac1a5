package services

import (
	"context"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MemberReaderSvc defines read operations on members and their ledger.
type MemberReaderSvc interface {
	GetMember(ctx context.Context, memberID string) (*domain.Member, error)
	SearchMembers(ctx context.Context, term string) ([]domain.Member, error)
	QueryMemberTransactions(ctx context.Context, ownerID string) ([]domain.Transaction, error)
	DescribeMember(ctx context.Context, memberID string) (*domain.MemberSummary, error)
}

// MemberWriterSvc defines member lifecycle operations.
type MemberWriterSvc interface {
	CreateMember(ctx context.Context, memberID, name string, enrollmentDate time.Time, initialBalance decimal.Decimal) (*domain.Member, error)
	UpdateMemberProfile(ctx context.Context, memberID, name string, enrollmentDate time.Time) (*domain.Member, error)
	DeleteMember(ctx context.Context, memberID string) error
}

// LedgerWriterSvc defines the balance-changing operations.
type LedgerWriterSvc interface {
	ApplyTransaction(ctx context.Context, ownerID string, amount decimal.Decimal, signatureRef, notes string) (decimal.Decimal, error)
	OverrideBalance(ctx context.Context, memberID string, balance decimal.Decimal) (decimal.Decimal, error)
}

// ReconcilerSvc compares stored balances with the ledger.
type ReconcilerSvc interface {
	ReconcileMember(ctx context.Context, memberID string, repair bool) (*domain.BalanceDrift, error)
	ReconcileAll(ctx context.Context, repair bool) ([]domain.BalanceDrift, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	MemberReaderSvc
	MemberWriterSvc
	LedgerWriterSvc
	ReconcilerSvc
}

// SignatureSvc stores and serves captured signature images.
type SignatureSvc interface {
	// UploadSignature accepts raw PNG bytes or a base64 data URL and returns the blob key.
	UploadSignature(ctx context.Context, ownerID string, payload []byte) (string, error)
	GetSignature(ctx context.Context, key string) ([]byte, error)
}
