package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID        string          `db:"account_id"`
	AziendaID        string          `db:"azienda_id"`
	Name             string          `db:"name"`
	AccountType      string          `db:"account_type"`
	OpeningBalance   decimal.Decimal `db:"opening_balance"`
	Balance          decimal.Decimal `db:"balance"` // Persisted running balance
	IsActive         bool            `db:"is_active"`
	TransferStrategy string          `db:"transfer_strategy"`
	Note             string          `db:"note"`
	AuditFields
}

// Category is a row of the categories table.
type Category struct {
	CategoryID    string  `db:"category_id"`
	AziendaID     *string `db:"azienda_id"` // NULL for global categories
	Name          string  `db:"name"`
	Code          string  `db:"code"`
	OperationType string  `db:"operation_type"`
	MacroCategory string  `db:"macro_category"`
	Ordinal       int     `db:"ordinal"`
	IsActive      bool    `db:"is_active"`
	IsSystem      bool    `db:"is_system"`
	AuditFields
}

// Preferences is a row of the preferences table.
type Preferences struct {
	AziendaID                  string  `db:"azienda_id"`
	DefaultCollectionAccountID *string `db:"default_collection_account_id"`
	DefaultPaymentAccountID    *string `db:"default_payment_account_id"`
	ReceivablesAccountID       *string `db:"receivables_account_id"`
	PayablesAccountID          *string `db:"payables_account_id"`
}
