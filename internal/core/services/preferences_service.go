package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
)

type preferencesService struct {
	BaseService
	prefsRepo   portsrepo.PreferencesRepository
	accountRepo portsrepo.AccountReader
	chart       domain.ChartDefaults
}

// NewPreferencesService creates the resolver of per-azienda account bindings.
func NewPreferencesService(prefsRepo portsrepo.PreferencesRepository, accountRepo portsrepo.AccountReader, chart domain.ChartDefaults) portssvc.PreferencesSvcFacade {
	return &preferencesService{prefsRepo: prefsRepo, accountRepo: accountRepo, chart: chart}
}

var _ portssvc.PreferencesSvcFacade = (*preferencesService)(nil)

func (s *preferencesService) GetPreferences(ctx context.Context, aziendaID string) (*domain.Preferences, error) {
	prefs, err := s.prefsRepo.FindPreferences(ctx, aziendaID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &domain.Preferences{AziendaID: aziendaID}, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load preferences", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	return prefs, nil
}

func (s *preferencesService) SetPreferences(ctx context.Context, aziendaID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error) {
	prefs, err := s.GetPreferences(ctx, aziendaID)
	if err != nil {
		return nil, err
	}

	bind := func(target **string, value *string, liquidity bool) error {
		if value == nil {
			return nil
		}
		if *value == "" {
			*target = nil
			return nil
		}
		acc, err := s.accountRepo.FindAccountByID(ctx, *value)
		if err != nil {
			return err
		}
		if acc.AziendaID != aziendaID {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, *value)
		}
		if liquidity && !acc.AccountType.IsLiquidity() {
			return apperrors.Validationf("account %q is not a cash or bank account", acc.Name)
		}
		id := acc.AccountID
		*target = &id
		return nil
	}
	for _, b := range []struct {
		target    **string
		value     *string
		liquidity bool
	}{
		{&prefs.DefaultCollectionAccountID, req.DefaultCollectionAccountID, true},
		{&prefs.DefaultPaymentAccountID, req.DefaultPaymentAccountID, true},
		{&prefs.ReceivablesAccountID, req.ReceivablesAccountID, false},
		{&prefs.PayablesAccountID, req.PayablesAccountID, false},
	} {
		if err := bind(b.target, b.value, b.liquidity); err != nil {
			return nil, err
		}
	}

	prefs.AziendaID = aziendaID
	if err := s.prefsRepo.SavePreferences(ctx, *prefs); err != nil {
		s.LogError(ctx, err, "Failed to save preferences", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	s.LogInfo(ctx, "Preferences updated", slog.String("azienda_id", aziendaID))
	return prefs, nil
}

// Resolve returns the accounts automation posts to. Each binding falls back from
// the explicit preference to the chart account with the reserved name, and
// liquidity bindings to the first active cash (then bank) account.
func (s *preferencesService) Resolve(ctx context.Context, aziendaID string) (domain.AccountBindings, error) {
	var b domain.AccountBindings
	accounts, err := s.accountRepo.ListAccounts(ctx, aziendaID)
	if err != nil {
		return b, fmt.Errorf("failed to list accounts: %w", err)
	}
	prefs, err := s.GetPreferences(ctx, aziendaID)
	if err != nil {
		return b, err
	}

	byID := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}
	preferred := func(id *string, liquidity bool) string {
		if id == nil {
			return ""
		}
		a, ok := byID[*id]
		if !ok || !a.IsActive || (liquidity && !a.AccountType.IsLiquidity()) {
			return ""
		}
		return a.AccountID
	}
	chartAccount := func(role domain.AccountRole) string {
		if acc := findByName(accounts, s.chart.NameFor(role)); acc != nil && acc.IsActive {
			return acc.AccountID
		}
		return ""
	}
	firstOr := func(values ...string) string {
		for _, v := range values {
			if v != "" {
				return v
			}
		}
		return ""
	}

	liquid := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive && a.AccountType.IsLiquidity() {
			liquid = append(liquid, a)
		}
	}
	sort.SliceStable(liquid, func(i, j int) bool {
		return liquid[i].AccountType == domain.Cash && liquid[j].AccountType != domain.Cash
	})
	firstLiquid := ""
	if len(liquid) > 0 {
		firstLiquid = liquid[0].AccountID
	}

	b.Sales = chartAccount(domain.RoleSales)
	b.SalesVAT = chartAccount(domain.RoleSalesVAT)
	b.Purchases = chartAccount(domain.RolePurchases)
	b.PurchasesVAT = chartAccount(domain.RolePurchasesVAT)
	b.Receivables = firstOr(preferred(prefs.ReceivablesAccountID, false), chartAccount(domain.RoleReceivables))
	b.Payables = firstOr(preferred(prefs.PayablesAccountID, false), chartAccount(domain.RolePayables))
	b.Collection = firstOr(preferred(prefs.DefaultCollectionAccountID, true), firstLiquid)
	b.Payment = firstOr(preferred(prefs.DefaultPaymentAccountID, true), b.Collection)
	return b, nil
}
