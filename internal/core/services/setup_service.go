package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
)

type setupService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	prefsRepo  portsrepo.PreferencesRepository
	accounts   portssvc.AccountBootstrapSvc
	categories portssvc.CategorySvcFacade
}

// NewSetupService creates the service that prepares an azienda for use.
func NewSetupService(txManager portsrepo.TransactionManager, prefsRepo portsrepo.PreferencesRepository, accounts portssvc.AccountBootstrapSvc, categories portssvc.CategorySvcFacade) portssvc.SetupSvc {
	return &setupService{
		txManager:  txManager,
		prefsRepo:  prefsRepo,
		accounts:   accounts,
		categories: categories,
	}
}

var _ portssvc.SetupSvc = (*setupService)(nil)

// EnsureDefaultSetup creates the chart accounts, a cash account when none
// exists, the system categories and the default preferences. Running it again
// changes nothing.
func (s *setupService) EnsureDefaultSetup(ctx context.Context, aziendaID string, userID string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.accounts.EnsureBootstrap(ctx, aziendaID, userID); err != nil {
			return err
		}
		cash, err := s.accounts.EnsureLiquidityAccount(ctx, aziendaID, userID)
		if err != nil {
			return err
		}
		if err := s.categories.EnsureSystemCategories(ctx, userID); err != nil {
			return err
		}

		prefs, err := s.prefsRepo.FindPreferences(ctx, aziendaID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if prefs != nil && err == nil {
			return nil
		}
		return s.prefsRepo.SavePreferences(ctx, domain.Preferences{
			AziendaID:                  aziendaID,
			DefaultCollectionAccountID: strPtr(cash.AccountID),
			DefaultPaymentAccountID:    strPtr(cash.AccountID),
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to set up azienda", slog.String("azienda_id", aziendaID))
		return err
	}
	s.LogInfo(ctx, "Azienda set up", slog.String("azienda_id", aziendaID))
	return nil
}
