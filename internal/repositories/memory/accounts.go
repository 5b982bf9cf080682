package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.accounts[account.AccountID]; exists {
			return apperrors.Duplicatef("account with ID %s already exists", account.AccountID)
		}
		account.System = false
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.accounts[account.AccountID]; !exists {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
		}
		account.System = false
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.accounts[accountID]; !exists {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		delete(st.accounts, accountID)
		return nil
	})
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := s.read(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range accountIDs {
			if a, ok := st.accounts[id]; ok {
				out[id] = a
			}
		}
		return nil
	})
	return out, err
}

// FindAccountsByIDsForUpdate needs no row locks: the transaction already holds the store.
func (s *Store) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.FindAccountsByIDs(ctx, accountIDs)
}

func (s *Store) ListAccounts(ctx context.Context, aziendaID string) ([]domain.Account, error) {
	var out []domain.Account
	err := s.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.AziendaID == aziendaID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, err
}

func (s *Store) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	return s.write(ctx, func(st *state) error {
		for id := range balanceChanges {
			if _, ok := st.accounts[id]; !ok {
				return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
			}
		}
		for id, change := range balanceChanges {
			a := st.accounts[id]
			a.Balance = a.Balance.Add(change)
			a.LastUpdatedAt = now
			a.LastUpdatedBy = userID
			st.accounts[id] = a
		}
		return nil
	})
}
