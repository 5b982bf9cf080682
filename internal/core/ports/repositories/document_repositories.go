package repositories

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentRepository gives the ledger access to collaborator records. Only the
// paid amount and status of invoices and the closed flag of batches are written.
type DocumentRepository interface {
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceForUpdate locks the invoice row within the context transaction.
	FindInvoiceForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices returns up to limit invoices with id > afterID ordered by id.
	// A nil aziendaID lists every azienda.
	ListInvoices(ctx context.Context, aziendaID *string, afterID string, limit int) ([]domain.Invoice, error)

	// ListOpenInvoices returns invoices with a residual, ordered by due date (nulls last).
	ListOpenInvoices(ctx context.Context, aziendaID string) ([]domain.Invoice, error)

	UpdateInvoicePayment(ctx context.Context, invoiceID string, paid decimal.Decimal, status domain.DocumentStatus) error

	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)
	FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error)
	FindBatchesByIDs(ctx context.Context, batchIDs []string) ([]domain.Batch, error)
	ListBatchesByContract(ctx context.Context, contractID string) ([]domain.Batch, error)
	CloseBatches(ctx context.Context, batchIDs []string) error
}
