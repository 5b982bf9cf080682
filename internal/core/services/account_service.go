package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	accountRepo  portsrepo.AccountRepositoryFacade
	movementRepo portsrepo.MovementReader
	prefsRepo    portsrepo.PreferencesRepository
	chart        domain.ChartDefaults
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountMovementReader lets the service check account usage before deletes.
func WithAccountMovementReader(repo portsrepo.MovementReader) AccountServiceOption {
	return func(s *accountService) {
		s.movementRepo = repo
	}
}

// WithAccountPreferences lets cleanup spare accounts bound in preferences.
func WithAccountPreferences(repo portsrepo.PreferencesRepository) AccountServiceOption {
	return func(s *accountService) {
		s.prefsRepo = repo
	}
}

// NewAccountService creates a new account service using the given chart of system accounts.
func NewAccountService(txManager portsrepo.TransactionManager, repo portsrepo.AccountRepositoryFacade, chart domain.ChartDefaults, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		txManager:   txManager,
		accountRepo: repo,
		chart:       chart,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) decorate(acc *domain.Account) {
	acc.System = s.chart.IsReserved(acc.Name)
}

func (s *accountService) decorateAll(accounts []domain.Account) []domain.Account {
	for i := range accounts {
		s.decorate(&accounts[i])
	}
	return accounts
}

// load fetches an account of the azienda; accounts of other aziende are reported as not found.
func (s *accountService) load(ctx context.Context, aziendaID, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if acc.AziendaID != aziendaID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	s.decorate(acc)
	return acc, nil
}

func findByName(accounts []domain.Account, name string) *domain.Account {
	n := domain.NormalizeName(name)
	for i := range accounts {
		if domain.NormalizeName(accounts[i].Name) == n {
			return &accounts[i]
		}
	}
	return nil
}

func (s *accountService) GetAccount(ctx context.Context, aziendaID string, accountID string) (*domain.Account, error) {
	return s.load(ctx, aziendaID, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, aziendaID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, aziendaID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("azienda_id", aziendaID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return s.decorateAll(accounts), nil
}

func (s *accountService) validateName(ctx context.Context, aziendaID, name, selfID string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", apperrors.Validationf("account name is required")
	}
	if s.chart.IsReserved(name) {
		return "", apperrors.Validationf("account name %q is reserved for system accounts", name)
	}
	existing, err := s.accountRepo.ListAccounts(ctx, aziendaID)
	if err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	if dup := findByName(existing, name); dup != nil && dup.AccountID != selfID {
		return "", apperrors.Duplicatef("an account named %q already exists", name)
	}
	return name, nil
}

func (s *accountService) CreateAccount(ctx context.Context, aziendaID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.IsLiquidity() {
		return nil, apperrors.Validationf("account type must be cash or bank, got %q", req.AccountType)
	}
	strategy := domain.TransferAutomatic
	if req.TransferStrategy != nil {
		if !req.TransferStrategy.IsValid() {
			return nil, apperrors.Validationf("unknown transfer strategy %q", *req.TransferStrategy)
		}
		strategy = *req.TransferStrategy
	}

	var account domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		name, err := s.validateName(ctx, aziendaID, req.Name, "")
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		opening := req.OpeningBalance.Round(2)
		account = domain.Account{
			AccountID:        uuid.NewString(),
			AziendaID:        aziendaID,
			Name:             name,
			AccountType:      req.AccountType,
			OpeningBalance:   opening,
			Balance:          opening,
			IsActive:         true,
			TransferStrategy: strategy,
			Note:             req.Note,
			AuditFields:      newAuditFields(userID, now),
		}
		return s.accountRepo.SaveAccount(ctx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("azienda_id", aziendaID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("azienda_id", aziendaID))
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, aziendaID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	var updated domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := s.load(ctx, aziendaID, accountID)
		if err != nil {
			return err
		}
		renames := req.Name != nil && domain.NormalizeName(*req.Name) != domain.NormalizeName(acc.Name)
		retypes := req.AccountType != nil && *req.AccountType != acc.AccountType
		if (renames || retypes) && (acc.System || !acc.AccountType.IsLiquidity()) {
			return apperrors.Permissionf("name and type of system account %q cannot be changed", acc.Name)
		}

		if renames {
			name, err := s.validateName(ctx, aziendaID, *req.Name, acc.AccountID)
			if err != nil {
				return err
			}
			acc.Name = name
		}
		if retypes {
			if !req.AccountType.IsLiquidity() {
				return apperrors.Validationf("account type must be cash or bank, got %q", *req.AccountType)
			}
			acc.AccountType = *req.AccountType
		}
		if req.TransferStrategy != nil {
			if !req.TransferStrategy.IsValid() {
				return apperrors.Validationf("unknown transfer strategy %q", *req.TransferStrategy)
			}
			acc.TransferStrategy = *req.TransferStrategy
		}
		if req.Note != nil {
			acc.Note = *req.Note
		}
		if req.IsActive != nil {
			acc.IsActive = *req.IsActive
		}
		if req.OpeningBalance != nil {
			// Re-read under lock so the balance shift does not race with movements.
			locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, []string{acc.AccountID})
			if err != nil {
				return err
			}
			current := locked[acc.AccountID]
			opening := req.OpeningBalance.Round(2)
			acc.Balance = current.Balance.Add(opening.Sub(current.OpeningBalance))
			acc.OpeningBalance = opening
		}

		touch(&acc.AuditFields, userID, time.Now().UTC())
		if err := s.accountRepo.UpdateAccount(ctx, *acc); err != nil {
			return err
		}
		s.decorate(acc)
		updated = *acc
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return &updated, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, aziendaID string, accountID string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := s.load(ctx, aziendaID, accountID)
		if err != nil {
			return err
		}
		if acc.System {
			return apperrors.Permissionf("system account %q cannot be deleted", acc.Name)
		}
		// Deleted movements keep their account references, so they block the delete too.
		if s.movementRepo != nil {
			n, err := s.movementRepo.CountMovementsByAccount(ctx, accountID, true)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperrors.Conflictf("account %q is used by %d movements", acc.Name, n)
			}
		}
		if s.prefsRepo != nil {
			prefs, err := s.prefsRepo.FindPreferences(ctx, aziendaID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if prefs != nil && slices.Contains(prefs.ReferencedAccountIDs(), accountID) {
				return apperrors.Conflictf("account %q is bound in the preferences", acc.Name)
			}
		}
		return s.accountRepo.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// ensureChartAccount returns the account bound to a chart entry, creating it when missing.
func (s *accountService) ensureChartAccount(ctx context.Context, aziendaID string, entry domain.ChartAccount, existing []domain.Account, userID string) (domain.Account, bool, error) {
	if acc := findByName(existing, entry.Name); acc != nil {
		return *acc, false, nil
	}
	acc := domain.Account{
		AccountID:        uuid.NewString(),
		AziendaID:        aziendaID,
		Name:             entry.Name,
		AccountType:      entry.Type,
		OpeningBalance:   decimal.Zero,
		Balance:          decimal.Zero,
		IsActive:         true,
		TransferStrategy: domain.TransferAutomatic,
		AuditFields:      newAuditFields(userID, time.Now().UTC()),
	}
	if err := s.accountRepo.SaveAccount(ctx, acc); err != nil {
		return domain.Account{}, false, err
	}
	return acc, true, nil
}

func (s *accountService) EnsureBootstrap(ctx context.Context, aziendaID string, userID string) ([]domain.Account, error) {
	var chartAccounts []domain.Account
	created := 0
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx, aziendaID)
		if err != nil {
			return err
		}
		chartAccounts = chartAccounts[:0]
		for _, entry := range s.chart.Accounts {
			acc, isNew, err := s.ensureChartAccount(ctx, aziendaID, entry, existing, userID)
			if err != nil {
				return err
			}
			if isNew {
				created++
				existing = append(existing, acc)
			}
			chartAccounts = append(chartAccounts, acc)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to bootstrap chart of accounts", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	if created > 0 {
		s.LogInfo(ctx, "Chart of accounts bootstrapped", slog.String("azienda_id", aziendaID), slog.Int("created", created))
	}
	return s.decorateAll(chartAccounts), nil
}

func (s *accountService) EnsureContractAdvancesAccount(ctx context.Context, aziendaID string, userID string) (*domain.Account, error) {
	var acc domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx, aziendaID)
		if err != nil {
			return err
		}
		var isNew bool
		acc, isNew, err = s.ensureChartAccount(ctx, aziendaID, s.chart.ContractAdvances, existing, userID)
		if err == nil && isNew {
			s.LogInfo(ctx, "Contract advances account created", slog.String("azienda_id", aziendaID), slog.String("account_id", acc.AccountID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.decorate(&acc)
	return &acc, nil
}

func (s *accountService) EnsureLiquidityAccount(ctx context.Context, aziendaID string, userID string) (*domain.Account, error) {
	var acc domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx, aziendaID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.AccountType.IsLiquidity() {
				acc = a
				return nil
			}
		}
		acc, _, err = s.ensureChartAccount(ctx, aziendaID, s.chart.DefaultCash, existing, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.decorate(&acc)
	return &acc, nil
}

func (s *accountService) CleanupUnusedAuxiliaryAccounts(ctx context.Context, aziendaID string) ([]string, error) {
	deleted := []string{}
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		deleted = deleted[:0]
		accounts, err := s.accountRepo.ListAccounts(ctx, aziendaID)
		if err != nil {
			return err
		}
		referenced := map[string]bool{}
		if s.prefsRepo != nil {
			prefs, err := s.prefsRepo.FindPreferences(ctx, aziendaID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if prefs != nil {
				for _, id := range prefs.ReferencedAccountIDs() {
					referenced[id] = true
				}
			}
		}
		for _, acc := range accounts {
			if acc.AccountType.IsLiquidity() || s.chart.IsReserved(acc.Name) || referenced[acc.AccountID] {
				continue
			}
			if s.movementRepo != nil {
				n, err := s.movementRepo.CountMovementsByAccount(ctx, acc.AccountID, true)
				if err != nil {
					return err
				}
				if n > 0 {
					continue
				}
			}
			if err := s.accountRepo.DeleteAccount(ctx, acc.AccountID); err != nil {
				return err
			}
			deleted = append(deleted, acc.AccountID)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to clean up auxiliary accounts", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	s.LogInfo(ctx, "Auxiliary accounts cleaned up", slog.String("azienda_id", aziendaID), slog.Int("deleted", len(deleted)))
	return deleted, nil
}

// ApplyBalanceChanges adds signed changes to account balances. It must run inside
// the caller's transaction so the change commits together with the movement.
func (s *accountService) ApplyBalanceChanges(ctx context.Context, changes map[string]decimal.Decimal, userID string) error {
	ids := make([]string, 0, len(changes))
	effective := make(map[string]decimal.Decimal, len(changes))
	for id, change := range changes {
		if change.IsZero() {
			continue
		}
		ids = append(ids, id)
		effective[id] = change
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)

	locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	if err := s.accountRepo.UpdateAccountBalances(ctx, effective, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	s.LogDebug(ctx, "Account balances updated", slog.Int("accounts", len(ids)))
	return nil
}
