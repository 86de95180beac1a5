package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spa_ledger/internal/models"
	"github.com/SscSPs/spa_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member data.
func newPgxMemberRepository(pool *pgxpool.Pool) *PgxMemberRepository {
	return &PgxMemberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

const memberColumns = `member_id, name, enrollment_date, balance, created_at`

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	err := row.Scan(&m.MemberID, &m.Name, &m.EnrollmentDate, &m.Balance, &m.CreatedAt)
	return m, err
}

// FindMemberByID retrieves a member by card ID.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1;`

	modelMember, err := scanMember(r.Pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreError(fmt.Sprintf("find member %s", memberID), err)
	}

	domainMember := mapping.ToDomainMember(modelMember)
	return &domainMember, nil
}

// ListMembers retrieves all members.
func (r *PgxMemberRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY member_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.StoreError("query members", err)
	}
	defer rows.Close()

	modelMembers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Member, error) {
		return scanMember(row)
	})
	if err != nil {
		return nil, apperrors.StoreError("scan members", err)
	}

	members := make([]domain.Member, len(modelMembers))
	for i, m := range modelMembers {
		members[i] = mapping.ToDomainMember(m)
	}
	return members, nil
}

// CreateMemberIfAbsent inserts the member unless the card ID is taken.
func (r *PgxMemberRepository) CreateMemberIfAbsent(ctx context.Context, member domain.Member) error {
	m := mapping.ToModelMember(member)
	query := `
		INSERT INTO members (member_id, name, enrollment_date, balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (member_id) DO NOTHING;
	`
	tag, err := r.Pool.Exec(ctx, query, m.MemberID, m.Name, m.EnrollmentDate, m.Balance, m.CreatedAt)
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("insert member %s", m.MemberID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateMember, m.MemberID)
	}
	return nil
}

// UpdateMemberProfile updates name and enrollment date.
func (r *PgxMemberRepository) UpdateMemberProfile(ctx context.Context, memberID string, name string, enrollmentDate time.Time) error {
	query := `UPDATE members SET name = $2, enrollment_date = $3 WHERE member_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, memberID, name, enrollmentDate)
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("update member %s", memberID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMember removes the member row. Transactions have no foreign key to members
// because orphaned transactions must survive for reconciliation.
func (r *PgxMemberRepository) DeleteMember(ctx context.Context, memberID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM members WHERE member_id = $1;`, memberID)
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("delete member %s", memberID), err)
	}
	return nil
}

// AddToMemberBalance applies delta in a single UPDATE; the row lock serializes concurrent writers.
func (r *PgxMemberRepository) AddToMemberBalance(ctx context.Context, memberID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE members SET balance = balance + $2 WHERE member_id = $1 RETURNING balance;`

	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, memberID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, apperrors.StoreError(fmt.Sprintf("add to balance of member %s", memberID), err)
	}
	return balance, nil
}

// SetMemberBalance overwrites the stored balance.
func (r *PgxMemberRepository) SetMemberBalance(ctx context.Context, memberID string, balance decimal.Decimal) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE members SET balance = $2 WHERE member_id = $1;`, memberID, balance)
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("set balance of member %s", memberID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
