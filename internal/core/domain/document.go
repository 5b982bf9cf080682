package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the kind of external document a movement is linked to.
type DocumentType string

const (
	DocumentInvoice DocumentType = "invoice"
)

// IsValid checks if the document type can carry links.
func (t DocumentType) IsValid() bool {
	return t == DocumentInvoice
}

// DocumentLink allocates part of a movement's amount to one external document.
type DocumentLink struct {
	MovementID   string          `json:"movementID"`
	DocumentType DocumentType    `json:"documentType"`
	DocumentID   string          `json:"documentID"`
	Amount       decimal.Decimal `json:"amount"`
}

// DocumentStatus is the settlement tier of an invoice.
type DocumentStatus string

const (
	StatusDue       DocumentStatus = "due"
	StatusPartial   DocumentStatus = "partial"
	StatusPaid      DocumentStatus = "paid"      // expense invoice fully settled
	StatusCollected DocumentStatus = "collected" // income invoice fully settled
)

// Invoice is the collaborator record automation reads. Only PaidAmount and
// Status are written back by the ledger.
type Invoice struct {
	InvoiceID    string          `json:"invoiceID"`
	AziendaID    string          `json:"aziendaID"`
	Number       string          `json:"number"`
	Direction    OperationType   `json:"direction"` // income or expense
	Counterpart  string          `json:"counterpart"`
	GrossTotal   decimal.Decimal `json:"grossTotal"`
	NetAmount    decimal.Decimal `json:"netAmount"`
	VATAmount    decimal.Decimal `json:"vatAmount"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	Status       DocumentStatus  `json:"status"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	CategoryHint string          `json:"categoryHint"`
	ContractID   *string         `json:"contractID,omitempty"`
}

// Residual is what is still to be paid or collected.
func (i Invoice) Residual() decimal.Decimal {
	r := i.GrossTotal.Sub(i.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// WithPaid returns the invoice with the paid amount moved by delta, clamped to
// [0, GrossTotal], and the status tier recomputed.
func (i Invoice) WithPaid(delta decimal.Decimal) Invoice {
	paid := i.PaidAmount.Add(delta)
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	if paid.GreaterThan(i.GrossTotal) {
		paid = i.GrossTotal
	}
	i.PaidAmount = paid
	i.Status = StatusFor(i.Direction, paid, i.GrossTotal)
	return i
}

// StatusFor computes the settlement tier for a paid amount against a total.
func StatusFor(direction OperationType, paid, total decimal.Decimal) DocumentStatus {
	switch {
	case !paid.IsPositive():
		return StatusDue
	case paid.LessThan(total):
		return StatusPartial
	case direction == Income:
		return StatusCollected
	default:
		return StatusPaid
	}
}

// Payment is a collaborator payment record.
type Payment struct {
	PaymentID   string          `json:"paymentID"`
	AziendaID   string          `json:"aziendaID"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	InvoiceID   *string         `json:"invoiceID,omitempty"`
	Direction   OperationType   `json:"direction"`
	AccountID   *string         `json:"accountID,omitempty"` // liquidity account used, nil = preferences default
	Description string          `json:"description"`
}

// Contract is a soccida contract.
type Contract struct {
	ContractID       string `json:"contractID"`
	AziendaID        string `json:"aziendaID"`
	CounterpartyName string `json:"counterpartyName"`
	Monetized        bool   `json:"monetized"`
}

// Batch is a partita animale.
type Batch struct {
	BatchID    string  `json:"batchID"`
	AziendaID  string  `json:"aziendaID"`
	ContractID *string `json:"contractID,omitempty"`
	HeadCount  int     `json:"headCount"`
	Closed     bool    `json:"closed"`
}

// OpenDocument is an invoice that still has a residual.
type OpenDocument struct {
	DocumentID     string          `json:"documentID"`
	Kind           OperationType   `json:"kind"`
	Number         string          `json:"number"`
	Counterpart    string          `json:"counterpart"`
	ResidualAmount decimal.Decimal `json:"residualAmount"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
}
