package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/core/ports/events"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerServiceImpl implements the LedgerSvcFacade interface.
// It is the only writer of member balances: every balance change is paired with exactly one
// appended transaction, and the summed transactions are the source of truth.
type ledgerServiceImpl struct {
	BaseService
	memberRepo portsrepo.MemberRepositoryFacade
	txnRepo    portsrepo.TransactionRepositoryFacade
	publisher  events.Publisher
	now        func() time.Time
	newID      func() string
}

// LedgerOption is a functional option for configuring the ledger service
type LedgerOption func(*ledgerServiceImpl)

// WithEventPublisher sets the publisher notified after each applied transaction.
func WithEventPublisher(p events.Publisher) LedgerOption {
	return func(s *ledgerServiceImpl) {
		s.publisher = p
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *ledgerServiceImpl) {
		s.now = now
	}
}

// WithIDGenerator overrides the transaction ID generator.
func WithIDGenerator(newID func() string) LedgerOption {
	return func(s *ledgerServiceImpl) {
		s.newID = newID
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(memberRepo portsrepo.MemberRepositoryFacade, txnRepo portsrepo.TransactionRepositoryFacade, options ...LedgerOption) portssvc.LedgerSvcFacade {
	svc := &ledgerServiceImpl{
		memberRepo: memberRepo,
		txnRepo:    txnRepo,
		publisher:  events.NoopPublisher{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerServiceImpl implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerServiceImpl)(nil)

func (s *ledgerServiceImpl) CreateMember(ctx context.Context, memberID, name string, enrollmentDate time.Time, initialBalance decimal.Decimal) (*domain.Member, error) {
	memberID = strings.TrimSpace(memberID)
	name = strings.TrimSpace(name)
	if memberID == "" || name == "" {
		return nil, fmt.Errorf("%w: member ID and name are required", apperrors.ErrValidation)
	}

	// The member starts at zero; the initial balance arrives through the same
	// append-then-add path as every other transaction.
	member := domain.Member{
		MemberID:       memberID,
		Name:           name,
		EnrollmentDate: domain.TruncateDate(enrollmentDate),
		Balance:        decimal.Zero,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.memberRepo.CreateMemberIfAbsent(ctx, member); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Member already exists", slog.String("member_id", memberID))
			return nil, apperrors.ErrDuplicateMember
		}
		s.LogError(ctx, err, "Failed to create member", slog.String("member_id", memberID))
		return nil, err
	}

	if !initialBalance.IsZero() {
		balance, _, err := s.appendAndApply(ctx, memberID, initialBalance, "", domain.NotesInitialTopUp)
		if err != nil {
			return nil, fmt.Errorf("member %s created but initial top-up failed: %w", memberID, err)
		}
		member.Balance = balance
	}

	s.LogInfo(ctx, "Member created successfully",
		slog.String("member_id", memberID),
		slog.String("initial_balance", initialBalance.String()))
	return &member, nil
}

func (s *ledgerServiceImpl) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find member by ID", slog.String("member_id", memberID))
		}
		return nil, err
	}
	return member, nil
}

func (s *ledgerServiceImpl) SearchMembers(ctx context.Context, term string) ([]domain.Member, error) {
	members, err := s.memberRepo.ListMembers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members")
		return nil, err
	}

	matched := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if m.Matches(term) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].MemberID < matched[j].MemberID })

	s.LogDebug(ctx, "Members searched", slog.String("term", term), slog.Int("count", len(matched)))
	return matched, nil
}

func (s *ledgerServiceImpl) DescribeMember(ctx context.Context, memberID string) (*domain.MemberSummary, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	txns, err := s.txnRepo.ListTransactionsByOwner(ctx, memberID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count member transactions", slog.String("member_id", memberID))
		return nil, err
	}
	return &domain.MemberSummary{Member: *member, TransactionCount: len(txns)}, nil
}

func (s *ledgerServiceImpl) UpdateMemberProfile(ctx context.Context, memberID, name string, enrollmentDate time.Time) (*domain.Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateMemberProfile(ctx, memberID, name, domain.TruncateDate(enrollmentDate)); err != nil {
		s.LogError(ctx, err, "Failed to update member profile", slog.String("member_id", memberID))
		return nil, err
	}

	s.LogInfo(ctx, "Member profile updated", slog.String("member_id", memberID))
	return s.GetMember(ctx, memberID)
}

// DeleteMember removes the member and then every transaction it owns. The cascade is not
// transactional; calling it again after a partial failure sweeps the remaining transactions.
func (s *ledgerServiceImpl) DeleteMember(ctx context.Context, memberID string) error {
	memberMissing := false
	if _, err := s.memberRepo.FindMemberByID(ctx, memberID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find member for deletion", slog.String("member_id", memberID))
			return err
		}
		memberMissing = true
	}

	if !memberMissing {
		if err := s.memberRepo.DeleteMember(ctx, memberID); err != nil {
			s.LogError(ctx, err, "Failed to delete member", slog.String("member_id", memberID))
			return err
		}
	}

	txns, err := s.txnRepo.ListTransactionsByOwner(ctx, memberID)
	if err != nil {
		s.LogError(ctx, err, "Member deleted but transactions could not be listed", slog.String("member_id", memberID))
		return &apperrors.PartialCascadeError{MemberID: memberID, Remaining: -1, Err: err}
	}
	if memberMissing && len(txns) == 0 {
		return apperrors.ErrNotFound
	}

	var failures []error
	deleted := 0
	for _, txn := range txns {
		if err := s.txnRepo.DeleteTransaction(ctx, memberID, txn.TransactionID); err != nil {
			failures = append(failures, fmt.Errorf("transaction %s: %w", txn.TransactionID, err))
			continue
		}
		deleted++
	}

	if len(failures) > 0 {
		cascadeErr := &apperrors.PartialCascadeError{
			MemberID:  memberID,
			Deleted:   deleted,
			Remaining: len(failures),
			Err:       errors.Join(failures...),
		}
		s.LogError(ctx, cascadeErr, "Member cascade delete incomplete",
			slog.String("member_id", memberID),
			slog.Int("deleted", deleted),
			slog.Int("remaining", len(failures)))
		return cascadeErr
	}

	s.LogInfo(ctx, "Member deleted",
		slog.String("member_id", memberID),
		slog.Int("transactions_deleted", deleted),
		slog.Bool("orphans_only", memberMissing))
	return nil
}

func (s *ledgerServiceImpl) QueryMemberTransactions(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	txns, err := s.txnRepo.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list member transactions", slog.String("member_id", ownerID))
		return nil, err
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	domain.SortByTimestamp(txns)
	return txns, nil
}

func (s *ledgerServiceImpl) ApplyTransaction(ctx context.Context, ownerID string, amount decimal.Decimal, signatureRef, notes string) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, apperrors.ErrZeroAmount
	}
	signatureRef = strings.TrimSpace(signatureRef)
	if signatureRef != "" {
		if amount.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: signatures are only recorded on debits", apperrors.ErrValidation)
		}
		if keyOwner, ok := domain.OwnerFromSignatureKey(signatureRef); !ok || keyOwner != ownerID {
			return decimal.Zero, fmt.Errorf("%w: signature %q does not belong to member %s", apperrors.ErrValidation, signatureRef, ownerID)
		}
	}

	if _, err := s.memberRepo.FindMemberByID(ctx, ownerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrUnknownMember
		}
		s.LogError(ctx, err, "Failed to look up transaction owner", slog.String("member_id", ownerID))
		return decimal.Zero, err
	}

	balance, _, err := s.appendAndApply(ctx, ownerID, amount, signatureRef, strings.TrimSpace(notes))
	return balance, err
}

// OverrideBalance appends an adjustment of (balance - stored balance). The stored balance is
// read before the adjustment is applied, so a transaction applied concurrently in between is
// kept on top of the target: the returned balance then differs from balance, while the stored
// balance still equals the ledger sum.
func (s *ledgerServiceImpl) OverrideBalance(ctx context.Context, memberID string, balance decimal.Decimal) (decimal.Decimal, error) {
	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrUnknownMember
		}
		return decimal.Zero, err
	}

	delta := balance.Sub(member.Balance)
	if delta.IsZero() {
		return member.Balance, nil
	}

	newBalance, txn, err := s.appendAndApply(ctx, memberID, delta, "", domain.NotesBalanceAdjustment)
	if err != nil {
		return decimal.Zero, err
	}
	s.LogInfo(ctx, "Balance overridden",
		slog.String("member_id", memberID),
		slog.String("previous_balance", member.Balance.String()),
		slog.String("new_balance", newBalance.String()),
		slog.String("adjustment_transaction_id", txn.TransactionID))
	if !newBalance.Equal(balance) {
		s.LogWarn(ctx, "Balance moved concurrently with override",
			slog.String("member_id", memberID),
			slog.String("requested_balance", balance.String()),
			slog.String("new_balance", newBalance.String()))
	}
	return newBalance, nil
}

// appendAndApply appends the transaction first and then moves the balance. A failure
// between the two steps leaves a transaction the balance does not reflect yet;
// ReconcileMember repairs it from the ledger.
func (s *ledgerServiceImpl) appendAndApply(ctx context.Context, ownerID string, amount decimal.Decimal, signatureRef, notes string) (decimal.Decimal, domain.Transaction, error) {
	now := s.now().UTC()
	txn := domain.Transaction{
		TransactionID: s.newID(),
		OwnerID:       ownerID,
		Amount:        amount,
		Timestamp:     now.Format(domain.TimestampLayout),
		SignatureRef:  signatureRef,
		Notes:         notes,
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to append transaction",
			slog.String("member_id", ownerID),
			slog.String("amount", amount.String()))
		return decimal.Zero, txn, fmt.Errorf("failed to append transaction for member %s: %w", ownerID, err)
	}

	newBalance, err := s.memberRepo.AddToMemberBalance(ctx, ownerID, amount)
	if err != nil {
		s.LogError(ctx, err, "Transaction recorded but balance not updated; reconciliation required",
			slog.String("member_id", ownerID),
			slog.String("transaction_id", txn.TransactionID),
			slog.String("amount", amount.String()))
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.ErrUnknownMember
		}
		return decimal.Zero, txn, fmt.Errorf("transaction %s recorded but balance update failed: %w", txn.TransactionID, err)
	}

	s.LogInfo(ctx, "Transaction applied",
		slog.String("member_id", ownerID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", amount.String()),
		slog.String("new_balance", newBalance.String()))

	event := domain.TransactionApplied{
		TransactionID: txn.TransactionID,
		MemberID:      ownerID,
		Amount:        amount,
		NewBalance:    newBalance,
		OccurredAt:    now,
	}
	if err := s.publisher.Publish(ctx, ownerID, event); err != nil {
		s.LogError(ctx, err, "Failed to publish transaction event",
			slog.String("transaction_id", txn.TransactionID))
	}

	return newBalance, txn, nil
}

// ReconcileMember recomputes the balance from the ledger. With repair set, a drifted
// stored balance is overwritten with the ledger sum. Run it while the member is idle:
// a transaction applied between the read and the repair is lost from the stored balance
// until the next reconciliation.
func (s *ledgerServiceImpl) ReconcileMember(ctx context.Context, memberID string, repair bool) (*domain.BalanceDrift, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	txns, err := s.txnRepo.ListTransactionsByOwner(ctx, memberID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions for reconciliation", slog.String("member_id", memberID))
		return nil, err
	}

	drift := domain.BalanceDrift{
		MemberID:         memberID,
		StoredBalance:    member.Balance,
		LedgerBalance:    domain.SumAmounts(txns),
		TransactionCount: len(txns),
	}
	if drift.InSync() {
		return &drift, nil
	}

	s.LogWarn(ctx, "Balance drift detected",
		slog.String("member_id", memberID),
		slog.String("stored_balance", drift.StoredBalance.String()),
		slog.String("ledger_balance", drift.LedgerBalance.String()))

	if repair {
		if err := s.memberRepo.SetMemberBalance(ctx, memberID, drift.LedgerBalance); err != nil {
			s.LogError(ctx, err, "Failed to repair member balance", slog.String("member_id", memberID))
			return nil, err
		}
		drift.Repaired = true
	}
	return &drift, nil
}

func (s *ledgerServiceImpl) ReconcileAll(ctx context.Context, repair bool) ([]domain.BalanceDrift, error) {
	members, err := s.memberRepo.ListMembers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members for reconciliation")
		return nil, err
	}

	drifts := []domain.BalanceDrift{}
	for _, m := range members {
		drift, err := s.ReconcileMember(ctx, m.MemberID, repair)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue // deleted since the listing
			}
			return drifts, err
		}
		if !drift.InSync() {
			drifts = append(drifts, *drift)
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].MemberID < drifts[j].MemberID })

	s.LogInfo(ctx, "Reconciliation finished",
		slog.Int("members", len(members)),
		slog.Int("drifted", len(drifts)),
		slog.Bool("repair", repair))
	return drifts, nil
}
