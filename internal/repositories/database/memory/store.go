package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type txnKey struct {
	ownerID       string
	transactionID string
}

type fault struct {
	err       error
	remaining int // <= 0 means every call fails
}

// Store is an in-memory implementation of the member, transaction and legacy transaction
// repositories. Every method holds the mutex for its whole duration, which gives the same
// single-item atomicity a key-value store provides (conditional put, additive update).
type Store struct {
	mu           sync.Mutex
	members      map[string]domain.Member
	transactions map[txnKey]domain.Transaction
	legacy       []domain.RawLegacyRecord
	faults       map[string]*fault
}

// NewStore creates and returns a new empty Store.
func NewStore() *Store {
	return &Store{
		members:      make(map[string]domain.Member),
		transactions: make(map[txnKey]domain.Transaction),
		faults:       make(map[string]*fault),
	}
}

// Compile-time checks: ensure Store implements the repository interfaces
var (
	_ portsrepo.MemberRepositoryFacade      = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.LegacyTransactionReader     = (*Store)(nil)
)

// InjectFault makes the next times calls of op fail with err wrapped as a store error.
// times <= 0 fails every call until ClearFaults.
func (s *Store) InjectFault(op string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{err: err, remaining: times}
}

// ClearFaults removes every injected fault.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]*fault)
}

// SeedLegacy appends records to the legacy collection.
func (s *Store) SeedLegacy(records ...domain.RawLegacyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy = append(s.legacy, records...)
}

// checkFault must be called with mu held.
func (s *Store) checkFault(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(s.faults, op)
		}
	}
	return apperrors.StoreError(op, f.err)
}

func (s *Store) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("FindMemberByID"); err != nil {
		return nil, err
	}
	m, ok := s.members[memberID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("ListMembers"); err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, m)
	}
	return members, nil
}

func (s *Store) CreateMemberIfAbsent(ctx context.Context, member domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("CreateMemberIfAbsent"); err != nil {
		return err
	}
	if _, exists := s.members[member.MemberID]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateMember, member.MemberID)
	}
	s.members[member.MemberID] = member
	return nil
}

func (s *Store) UpdateMemberProfile(ctx context.Context, memberID string, name string, enrollmentDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("UpdateMemberProfile"); err != nil {
		return err
	}
	m, ok := s.members[memberID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.Name = name
	m.EnrollmentDate = enrollmentDate
	s.members[memberID] = m
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("DeleteMember"); err != nil {
		return err
	}
	delete(s.members, memberID)
	return nil
}

func (s *Store) AddToMemberBalance(ctx context.Context, memberID string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("AddToMemberBalance"); err != nil {
		return decimal.Zero, err
	}
	m, ok := s.members[memberID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	m.Balance = m.Balance.Add(delta)
	s.members[memberID] = m
	return m.Balance, nil
}

func (s *Store) SetMemberBalance(ctx context.Context, memberID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("SetMemberBalance"); err != nil {
		return err
	}
	m, ok := s.members[memberID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.Balance = balance
	s.members[memberID] = m
	return nil
}

func (s *Store) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("SaveTransaction"); err != nil {
		return err
	}
	s.transactions[txnKey{txn.OwnerID, txn.TransactionID}] = txn
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("DeleteTransaction"); err != nil {
		return err
	}
	delete(s.transactions, txnKey{ownerID, transactionID})
	return nil
}

func (s *Store) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("ListTransactionsByOwner"); err != nil {
		return nil, err
	}
	var result []domain.Transaction
	for k, t := range s.transactions {
		if k.ownerID == ownerID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) ScanTransactions(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("ScanTransactions"); err != nil {
		return nil, err
	}
	result := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		result = append(result, t)
	}
	return result, nil
}

func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("CountTransactions"); err != nil {
		return 0, err
	}
	return len(s.transactions), nil
}

func (s *Store) ScanLegacyTransactions(ctx context.Context, opts portsrepo.ScanOptions) ([]domain.RawLegacyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault("ScanLegacyTransactions"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.StoreError("ScanLegacyTransactions", err)
	}
	copied := make([]domain.RawLegacyRecord, len(s.legacy))
	copy(copied, s.legacy)
	return copied, nil
}
