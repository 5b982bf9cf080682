package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PutInvoice stores a collaborator invoice.
func (s *Store) PutInvoice(ctx context.Context, invoice domain.Invoice) {
	_ = s.write(ctx, func(st *state) error {
		st.invoices[invoice.InvoiceID] = invoice
		return nil
	})
}

// PutPayment stores a collaborator payment.
func (s *Store) PutPayment(ctx context.Context, payment domain.Payment) {
	_ = s.write(ctx, func(st *state) error {
		st.payments[payment.PaymentID] = payment
		return nil
	})
}

// PutContract stores a collaborator contract.
func (s *Store) PutContract(ctx context.Context, contract domain.Contract) {
	_ = s.write(ctx, func(st *state) error {
		st.contracts[contract.ContractID] = contract
		return nil
	})
}

// PutBatch stores a collaborator batch.
func (s *Store) PutBatch(ctx context.Context, batch domain.Batch) {
	_ = s.write(ctx, func(st *state) error {
		st.batches[batch.BatchID] = batch
		return nil
	})
}

func (s *Store) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var out *domain.Invoice
	err := s.read(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		out = &inv
		return nil
	})
	return out, err
}

func (s *Store) FindInvoiceForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.FindInvoiceByID(ctx, invoiceID)
}

func (s *Store) ListInvoices(ctx context.Context, aziendaID *string, afterID string, limit int) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := s.read(ctx, func(st *state) error {
		for _, inv := range st.invoices {
			if aziendaID != nil && inv.AziendaID != *aziendaID {
				continue
			}
			if inv.InvoiceID > afterID {
				out = append(out, inv)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID < out[j].InvoiceID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (s *Store) ListOpenInvoices(ctx context.Context, aziendaID string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := s.read(ctx, func(st *state) error {
		for _, inv := range st.invoices {
			if inv.AziendaID == aziendaID && inv.Residual().IsPositive() {
				out = append(out, inv)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.InvoiceID < b.InvoiceID
	})
	return out, err
}

func (s *Store) UpdateInvoicePayment(ctx context.Context, invoiceID string, paid decimal.Decimal, status domain.DocumentStatus) error {
	return s.write(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		inv.PaidAmount = paid
		inv.Status = status
		st.invoices[invoiceID] = inv
		return nil
	})
}

func (s *Store) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.read(ctx, func(st *state) error {
		p, ok := st.payments[paymentID]
		if !ok {
			return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (s *Store) FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	var out *domain.Contract
	err := s.read(ctx, func(st *state) error {
		c, ok := st.contracts[contractID]
		if !ok {
			return fmt.Errorf("%w: contract %s", apperrors.ErrNotFound, contractID)
		}
		out = &c
		return nil
	})
	return out, err
}

// FindBatchesByIDs returns the batches found, in the order requested.
func (s *Store) FindBatchesByIDs(ctx context.Context, batchIDs []string) ([]domain.Batch, error) {
	var out []domain.Batch
	err := s.read(ctx, func(st *state) error {
		for _, id := range batchIDs {
			if b, ok := st.batches[id]; ok {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) ListBatchesByContract(ctx context.Context, contractID string) ([]domain.Batch, error) {
	var out []domain.Batch
	err := s.read(ctx, func(st *state) error {
		for _, b := range st.batches {
			if b.ContractID != nil && *b.ContractID == contractID {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BatchID < out[j].BatchID })
	return out, err
}

func (s *Store) CloseBatches(ctx context.Context, batchIDs []string) error {
	return s.write(ctx, func(st *state) error {
		for _, id := range batchIDs {
			b, ok := st.batches[id]
			if !ok {
				return fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, id)
			}
			b.Closed = true
			st.batches[id] = b
		}
		return nil
	})
}

func (s *Store) FindPreferences(ctx context.Context, aziendaID string) (*domain.Preferences, error) {
	var out *domain.Preferences
	err := s.read(ctx, func(st *state) error {
		p, ok := st.preferences[aziendaID]
		if !ok {
			return fmt.Errorf("%w: preferences for azienda %s", apperrors.ErrNotFound, aziendaID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (s *Store) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	return s.write(ctx, func(st *state) error {
		st.preferences[prefs.AziendaID] = prefs
		return nil
	})
}
