package services

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves an account of the azienda.
	GetAccount(ctx context.Context, aziendaID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves every account of the azienda.
	ListAccounts(ctx context.Context, aziendaID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, aziendaID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, aziendaID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, aziendaID string, accountID string) error

	// CleanupUnusedAuxiliaryAccounts deletes unused non-essential accounts and returns their ids.
	CleanupUnusedAuxiliaryAccounts(ctx context.Context, aziendaID string) ([]string, error)
}

// AccountBootstrapSvc creates the system chart of accounts.
type AccountBootstrapSvc interface {
	// EnsureBootstrap creates the missing system accounts of the chart.
	EnsureBootstrap(ctx context.Context, aziendaID string, userID string) ([]domain.Account, error)

	// EnsureContractAdvancesAccount returns the monetized-contract advances account, creating it when missing.
	EnsureContractAdvancesAccount(ctx context.Context, aziendaID string, userID string) (*domain.Account, error)

	// EnsureLiquidityAccount creates the default cash account when the azienda has no cash or bank account.
	EnsureLiquidityAccount(ctx context.Context, aziendaID string, userID string) (*domain.Account, error)
}

// AccountBalanceSvc applies signed balance changes.
type AccountBalanceSvc interface {
	ApplyBalanceChanges(ctx context.Context, changes map[string]decimal.Decimal, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountBootstrapSvc
	AccountBalanceSvc
}
