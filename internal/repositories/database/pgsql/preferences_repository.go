package pgsql

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/SscSPs/prima_nota/internal/models"
	"github.com/SscSPs/prima_nota/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPreferencesRepository struct {
	BaseRepository
}

func newPgxPreferencesRepository(pool *pgxpool.Pool) *PgxPreferencesRepository {
	return &PgxPreferencesRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PreferencesRepository = (*PgxPreferencesRepository)(nil)

func (r *PgxPreferencesRepository) FindPreferences(ctx context.Context, aziendaID string) (*domain.Preferences, error) {
	m, err := collectOne[models.Preferences](r.DB(ctx).Query(ctx, `
		SELECT azienda_id, default_collection_account_id, default_payment_account_id,
		       receivables_account_id, payables_account_id
		FROM preferences
		WHERE azienda_id = $1;`, aziendaID))
	if err != nil {
		return nil, notFound(err, "preferences for azienda "+aziendaID)
	}
	p := mapping.ToDomainPreferences(m)
	return &p, nil
}

func (r *PgxPreferencesRepository) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	m := mapping.ToModelPreferences(prefs)
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO preferences (azienda_id, default_collection_account_id, default_payment_account_id,
		                         receivables_account_id, payables_account_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (azienda_id) DO UPDATE
		SET default_collection_account_id = EXCLUDED.default_collection_account_id,
		    default_payment_account_id = EXCLUDED.default_payment_account_id,
		    receivables_account_id = EXCLUDED.receivables_account_id,
		    payables_account_id = EXCLUDED.payables_account_id;`,
		m.AziendaID, m.DefaultCollectionAccountID, m.DefaultPaymentAccountID, m.ReceivablesAccountID, m.PayablesAccountID,
	)
	if err != nil {
		return mapWriteError(err, "preferences for azienda "+m.AziendaID)
	}
	return nil
}
