package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a row of the invoices table, owned by the invoicing module.
type Invoice struct {
	InvoiceID    string          `db:"invoice_id"`
	AziendaID    string          `db:"azienda_id"`
	Number       string          `db:"number"`
	Direction    string          `db:"direction"`
	Counterpart  string          `db:"counterpart"`
	GrossTotal   decimal.Decimal `db:"gross_total"`
	NetAmount    decimal.Decimal `db:"net_amount"`
	VATAmount    decimal.Decimal `db:"vat_amount"`
	PaidAmount   decimal.Decimal `db:"paid_amount"`
	Status       string          `db:"status"`
	IssueDate    time.Time       `db:"issue_date"`
	DueDate      *time.Time      `db:"due_date"`
	CategoryHint string          `db:"category_hint"`
	ContractID   *string         `db:"contract_id"`
}

// Payment is a row of the payments table.
type Payment struct {
	PaymentID   string          `db:"payment_id"`
	AziendaID   string          `db:"azienda_id"`
	Amount      decimal.Decimal `db:"amount"`
	Date        time.Time       `db:"date"`
	InvoiceID   *string         `db:"invoice_id"`
	Direction   string          `db:"direction"`
	AccountID   *string         `db:"account_id"`
	Description string          `db:"description"`
}

// Contract is a row of the contracts table.
type Contract struct {
	ContractID       string `db:"contract_id"`
	AziendaID        string `db:"azienda_id"`
	CounterpartyName string `db:"counterparty_name"`
	Monetized        bool   `db:"monetized"`
}

// Batch is a row of the batches table.
type Batch struct {
	BatchID    string  `db:"batch_id"`
	AziendaID  string  `db:"azienda_id"`
	ContractID *string `db:"contract_id"`
	HeadCount  int     `db:"head_count"`
	Closed     bool    `db:"closed"`
}
