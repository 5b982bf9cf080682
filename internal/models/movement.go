package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is a row of the movements table.
type Movement struct {
	MovementID           string          `db:"movement_id"`
	AziendaID            string          `db:"azienda_id"`
	SourceAccountID      string          `db:"source_account_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	CategoryID           *string         `db:"category_id"`
	OperationType        string          `db:"operation_type"`
	Status               string          `db:"status"`
	Origin               string          `db:"origin"`
	Date                 time.Time       `db:"date"`
	Description          string          `db:"description"`
	Amount               decimal.Decimal `db:"amount"`
	Counterpart          string          `db:"counterpart"`
	Note                 string          `db:"note"`
	InvoiceID            *string         `db:"invoice_id"`
	PaymentID            *string         `db:"payment_id"`
	BatchID              *string         `db:"batch_id"`
	EquipmentID          *string         `db:"equipment_id"`
	ContractID           *string         `db:"contract_id"`
	AccountRole          string          `db:"account_role"`
	Lifecycle
	AuditFields
}

// DocumentLink is a row of the document_links table.
type DocumentLink struct {
	MovementID   string          `db:"movement_id"`
	DocumentType string          `db:"document_type"`
	DocumentID   string          `db:"document_id"`
	Amount       decimal.Decimal `db:"amount"`
}

// BatchAllocation is a row of the batch_allocations table.
type BatchAllocation struct {
	AllocationID string          `db:"allocation_id"`
	MovementID   *string         `db:"movement_id"`
	BatchID      string          `db:"batch_id"`
	Amount       decimal.Decimal `db:"amount"`
	Weight       decimal.Decimal `db:"weight"`
	Lifecycle
}
