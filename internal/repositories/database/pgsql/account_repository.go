package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/SscSPs/prima_nota/internal/models"
	"github.com/SscSPs/prima_nota/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, azienda_id, name, account_type, opening_balance, balance, is_active,
	transfer_strategy, note, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.AccountID, m.AziendaID, m.Name, m.AccountType, m.OpeningBalance, m.Balance, m.IsActive,
		m.TransferStrategy, m.Note, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account "+m.AccountID)
	}
	return nil
}

// UpdateAccount rewrites every mutable column, the cached balance included.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	tag, err := r.DB(ctx).Exec(ctx, `
		UPDATE accounts
		SET name = $2, account_type = $3, opening_balance = $4, balance = $5, is_active = $6,
		    transfer_strategy = $7, note = $8, last_updated_at = $9, last_updated_by = $10
		WHERE account_id = $1;`,
		m.AccountID, m.Name, m.AccountType, m.OpeningBalance, m.Balance, m.IsActive,
		m.TransferStrategy, m.Note, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account "+m.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return mapWriteError(err, "account "+accountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	m, err := collectOne[models.Account](r.DB(ctx).Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1;`, accountID))
	if err != nil {
		return nil, notFound(err, "account "+accountID)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, "")
}

// FindAccountsByIDsForUpdate locks the rows in id order so concurrent writers
// touching overlapping accounts cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, " ORDER BY account_id FOR UPDATE")
}

func (r *PgxAccountRepository) findByIDs(ctx context.Context, accountIDs []string, suffix string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	rows, err := collect[models.Account](r.DB(ctx).Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1)`+suffix+`;`, accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	for _, m := range rows {
		out[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, aziendaID string) ([]domain.Account, error) {
	rows, err := collect[models.Account](r.DB(ctx).Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE azienda_id = $1 ORDER BY name, account_id;`, aziendaID))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for azienda %s: %w", aziendaID, err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainAccount), nil
}

// UpdateAccountBalances adds each signed change to the stored balance.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	db := r.DB(ctx)
	for accountID, change := range balanceChanges {
		tag, err := db.Exec(ctx, `
			UPDATE accounts
			SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1;`,
			accountID, change, now, userID,
		)
		if err != nil {
			return mapWriteError(err, "balance of account "+accountID)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
	}
	return nil
}
