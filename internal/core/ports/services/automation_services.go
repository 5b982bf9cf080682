package services

import (
	"context"
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/shopspring/decimal"
)

// PartitaDistributorSvc splits amounts across weighted batches.
type PartitaDistributorSvc interface {
	Distribute(total decimal.Decimal, targets []domain.DistributionTarget) ([]domain.Share, error)
}

// SettlementResult is the outcome of a contract settlement.
type SettlementResult struct {
	Movement    domain.Movement
	Allocations []domain.BatchAllocation
}

// AutomationSvcFacade derives movements from collaborator documents.
type AutomationSvcFacade interface {
	SyncForInvoice(ctx context.Context, aziendaID string, invoiceID string, userID string) ([]domain.Movement, error)
	SyncForPayment(ctx context.Context, aziendaID string, paymentID string, userID string) (*domain.Movement, error)
	SyncForContractSettlement(ctx context.Context, aziendaID string, contractID string, amount decimal.Decimal, date time.Time, batchIDs []string, final bool, userID string) (*SettlementResult, error)

	// SyncAll re-syncs every invoice of the azienda, or of every azienda when aziendaID is nil.
	// Failures on single documents are reported, never returned.
	SyncAll(ctx context.Context, aziendaID *string, userID string) (*domain.SyncReport, error)
}

// PreferencesSvcFacade resolves and edits per-azienda account bindings.
type PreferencesSvcFacade interface {
	GetPreferences(ctx context.Context, aziendaID string) (*domain.Preferences, error)
	SetPreferences(ctx context.Context, aziendaID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error)
	Resolve(ctx context.Context, aziendaID string) (domain.AccountBindings, error)
}

// SetupSvc bootstraps an azienda.
type SetupSvc interface {
	EnsureDefaultSetup(ctx context.Context, aziendaID string, userID string) error
}
