package pgsql

import (
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		MemberRepo:      newPgxMemberRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		LegacyRepo:      newPgxLegacyTransactionRepository(dbPool),
	}
}
