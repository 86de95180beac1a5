package services

import (
	"github.com/SscSPs/spa_ledger/internal/core/ports/events"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/SscSPs/spa_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher events.Publisher) *portssvc.ServiceContainer {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &portssvc.ServiceContainer{
		Ledger:    NewLedgerService(repos.MemberRepo, repos.TransactionRepo, WithEventPublisher(publisher)),
		Signature: NewSignatureService(repos.Blobs, cfg.SignatureCacheTTL),
		Migration: NewMigrationService(repos.LegacyRepo, repos.TransactionRepo),
	}
}
