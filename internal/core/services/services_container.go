package services

import (
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The chart and the default categories are fixed for the life of the process.
	chart := domain.DefaultChart()

	container.Account = NewAccountService(
		repos.TxManager,
		repos.AccountRepo,
		chart,
		WithAccountMovementReader(repos.MovementRepo),
		WithAccountPreferences(repos.PreferencesRepo),
	)
	container.Category = NewCategoryService(repos.TxManager, repos.CategoryRepo, repos.MovementRepo, domain.DefaultCategories())
	container.DocumentLink = NewDocumentLinkService(repos.TxManager, repos.MovementRepo, repos.LinkRepo, repos.DocumentRepo)
	container.Preferences = NewPreferencesService(repos.PreferencesRepo, repos.AccountRepo, chart)
	container.Distributor = NewPartitaDistributor()

	// The movement engine applies balances through the account service and
	// links through the document link service.
	container.Movement = NewMovementService(repos, container.Account, container.DocumentLink)

	chunkSize := DefaultSyncChunkSize
	if cfg != nil && cfg.SyncChunkSize > 0 {
		chunkSize = cfg.SyncChunkSize
	}
	container.Automation = NewAutomationService(AutomationServiceDeps{
		Repos:       repos,
		Accounts:    container.Account,
		Categories:  container.Category,
		Movements:   container.Movement,
		Preferences: container.Preferences,
		Distributor: container.Distributor,
		ChunkSize:   chunkSize,
	})
	container.Setup = NewSetupService(repos.TxManager, repos.PreferencesRepo, container.Account, container.Category)

	return container
}
