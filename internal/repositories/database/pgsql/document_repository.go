package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/SscSPs/prima_nota/internal/models"
	"github.com/SscSPs/prima_nota/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const invoiceColumns = `invoice_id, azienda_id, number, direction, counterpart, gross_total, net_amount,
	vat_amount, paid_amount, status, issue_date, due_date, category_hint, contract_id`

// PgxDocumentRepository reads the records of the invoicing, payment and herd modules.
type PgxDocumentRepository struct {
	BaseRepository
}

func newPgxDocumentRepository(pool *pgxpool.Pool) *PgxDocumentRepository {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepository = (*PgxDocumentRepository)(nil)

func (r *PgxDocumentRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return r.findInvoice(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1;`, invoiceID)
}

func (r *PgxDocumentRepository) FindInvoiceForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return r.findInvoice(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`, invoiceID)
}

func (r *PgxDocumentRepository) findInvoice(ctx context.Context, query string, invoiceID string) (*domain.Invoice, error) {
	m, err := collectOne[models.Invoice](r.DB(ctx).Query(ctx, query, invoiceID))
	if err != nil {
		return nil, notFound(err, "invoice "+invoiceID)
	}
	inv := mapping.ToDomainInvoice(m)
	return &inv, nil
}

func (r *PgxDocumentRepository) ListInvoices(ctx context.Context, aziendaID *string, afterID string, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := collect[models.Invoice](r.DB(ctx).Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE ($1::text IS NULL OR azienda_id = $1) AND invoice_id > $2
		ORDER BY invoice_id
		LIMIT $3;`, aziendaID, afterID, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainInvoice), nil
}

func (r *PgxDocumentRepository) ListOpenInvoices(ctx context.Context, aziendaID string) ([]domain.Invoice, error) {
	rows, err := collect[models.Invoice](r.DB(ctx).Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE azienda_id = $1 AND gross_total > paid_amount
		ORDER BY due_date NULLS LAST, invoice_id;`, aziendaID))
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices for azienda %s: %w", aziendaID, err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainInvoice), nil
}

func (r *PgxDocumentRepository) UpdateInvoicePayment(ctx context.Context, invoiceID string, paid decimal.Decimal, status domain.DocumentStatus) error {
	tag, err := r.DB(ctx).Exec(ctx,
		`UPDATE invoices SET paid_amount = $2, status = $3 WHERE invoice_id = $1;`,
		invoiceID, paid, string(status))
	if err != nil {
		return mapWriteError(err, "invoice "+invoiceID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return nil
}

func (r *PgxDocumentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	m, err := collectOne[models.Payment](r.DB(ctx).Query(ctx, `
		SELECT payment_id, azienda_id, amount, date, invoice_id, direction, account_id, description
		FROM payments
		WHERE payment_id = $1;`, paymentID))
	if err != nil {
		return nil, notFound(err, "payment "+paymentID)
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

func (r *PgxDocumentRepository) FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	m, err := collectOne[models.Contract](r.DB(ctx).Query(ctx, `
		SELECT contract_id, azienda_id, counterparty_name, monetized
		FROM contracts
		WHERE contract_id = $1;`, contractID))
	if err != nil {
		return nil, notFound(err, "contract "+contractID)
	}
	c := mapping.ToDomainContract(m)
	return &c, nil
}

// FindBatchesByIDs returns the batches found, in the order requested.
func (r *PgxDocumentRepository) FindBatchesByIDs(ctx context.Context, batchIDs []string) ([]domain.Batch, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	rows, err := collect[models.Batch](r.DB(ctx).Query(ctx, `
		SELECT b.batch_id, b.azienda_id, b.contract_id, b.head_count, b.closed
		FROM unnest($1::text[]) WITH ORDINALITY AS req(batch_id, pos)
		JOIN batches b ON b.batch_id = req.batch_id
		ORDER BY req.pos;`, batchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query batches by IDs: %w", err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainBatch), nil
}

func (r *PgxDocumentRepository) ListBatchesByContract(ctx context.Context, contractID string) ([]domain.Batch, error) {
	rows, err := collect[models.Batch](r.DB(ctx).Query(ctx, `
		SELECT batch_id, azienda_id, contract_id, head_count, closed
		FROM batches
		WHERE contract_id = $1
		ORDER BY batch_id;`, contractID))
	if err != nil {
		return nil, fmt.Errorf("failed to list batches of contract %s: %w", contractID, err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainBatch), nil
}

func (r *PgxDocumentRepository) CloseBatches(ctx context.Context, batchIDs []string) error {
	if len(batchIDs) == 0 {
		return nil
	}
	tag, err := r.DB(ctx).Exec(ctx, `UPDATE batches SET closed = TRUE WHERE batch_id = ANY($1);`, batchIDs)
	if err != nil {
		return mapWriteError(err, "batches")
	}
	if int(tag.RowsAffected()) != len(batchIDs) {
		return fmt.Errorf("%w: some of batches %v", apperrors.ErrNotFound, batchIDs)
	}
	return nil
}
