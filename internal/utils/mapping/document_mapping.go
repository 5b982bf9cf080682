package mapping

import (
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/models"
)

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:    m.InvoiceID,
		AziendaID:    m.AziendaID,
		Number:       m.Number,
		Direction:    domain.OperationType(m.Direction),
		Counterpart:  m.Counterpart,
		GrossTotal:   m.GrossTotal,
		NetAmount:    m.NetAmount,
		VATAmount:    m.VATAmount,
		PaidAmount:   m.PaidAmount,
		Status:       domain.DocumentStatus(m.Status),
		IssueDate:    m.IssueDate,
		DueDate:      m.DueDate,
		CategoryHint: m.CategoryHint,
		ContractID:   m.ContractID,
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:   m.PaymentID,
		AziendaID:   m.AziendaID,
		Amount:      m.Amount,
		Date:        m.Date,
		InvoiceID:   m.InvoiceID,
		Direction:   domain.OperationType(m.Direction),
		AccountID:   m.AccountID,
		Description: m.Description,
	}
}

// ToDomainContract converts a model Contract to a domain Contract
func ToDomainContract(m models.Contract) domain.Contract {
	return domain.Contract(m)
}

// ToDomainBatch converts a model Batch to a domain Batch
func ToDomainBatch(m models.Batch) domain.Batch {
	return domain.Batch(m)
}
