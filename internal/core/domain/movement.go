package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the direction of a movement.
type OperationType string

const (
	Income   OperationType = "income"
	Expense  OperationType = "expense"
	Transfer OperationType = "transfer"
)

// IsValid checks if the operation type is known.
func (t OperationType) IsValid() bool {
	return t == Income || t == Expense || t == Transfer
}

// MovementStatus is the state of a movement: provisional → definitive, one way.
type MovementStatus string

const (
	Provisional MovementStatus = "provisional"
	Definitive  MovementStatus = "definitive"
)

// IsValid checks if the status is known.
func (s MovementStatus) IsValid() bool {
	return s == Provisional || s == Definitive
}

// MovementOrigin records who produced a movement.
type MovementOrigin string

const (
	OriginManual         MovementOrigin = "manual"
	OriginAutomatic      MovementOrigin = "automatic"
	OriginReconciliation MovementOrigin = "reconciliation"
	OriginTransfer       MovementOrigin = "transfer"
)

// IsValid checks if the origin is known.
func (o MovementOrigin) IsValid() bool {
	switch o {
	case OriginManual, OriginAutomatic, OriginReconciliation, OriginTransfer:
		return true
	}
	return false
}

// Movement is a single Prima Nota entry. Amount is unsigned; the direction comes
// from the operation type and the source/destination accounts.
type Movement struct {
	MovementID           string          `json:"movementID"`
	AziendaID            string          `json:"aziendaID"`
	SourceAccountID      string          `json:"sourceAccountID"`
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"`
	CategoryID           *string         `json:"categoryID,omitempty"`
	OperationType        OperationType   `json:"operationType"`
	Status               MovementStatus  `json:"status"`
	Origin               MovementOrigin  `json:"origin"`
	Date                 time.Time       `json:"date"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Counterpart          string          `json:"counterpart"`
	Note                 string          `json:"note"`
	InvoiceID            *string         `json:"invoiceID,omitempty"`
	PaymentID            *string         `json:"paymentID,omitempty"`
	BatchID              *string         `json:"batchID,omitempty"`
	EquipmentID          *string         `json:"equipmentID,omitempty"`
	ContractID           *string         `json:"contractID,omitempty"`
	AccountRole          AccountRole     `json:"accountRole,omitempty"`
	Links                []DocumentLink  `json:"links,omitempty"`
	Lifecycle
	AuditFields
}

// IsApplied reports whether the movement currently affects balances and documents.
func (m Movement) IsApplied() bool {
	return m.Status == Definitive && !m.IsDeleted()
}

// IsAutomatic reports whether the movement was produced by automation.
func (m Movement) IsAutomatic() bool {
	return m.Origin == OriginAutomatic
}

// AccountIDs returns the accounts the movement touches.
func (m Movement) AccountIDs() []string {
	ids := []string{m.SourceAccountID}
	if m.DestinationAccountID != nil && *m.DestinationAccountID != "" && *m.DestinationAccountID != m.SourceAccountID {
		ids = append(ids, *m.DestinationAccountID)
	}
	return ids
}

// BalanceEffects returns the signed change each touched account receives when the
// movement is applied. Income adds to the source, expense subtracts from it,
// transfer moves the amount from source to destination.
func (m Movement) BalanceEffects() map[string]decimal.Decimal {
	effects := make(map[string]decimal.Decimal, 2)
	switch m.OperationType {
	case Income:
		effects[m.SourceAccountID] = m.Amount
	case Expense:
		effects[m.SourceAccountID] = m.Amount.Neg()
	case Transfer:
		effects[m.SourceAccountID] = m.Amount.Neg()
		if m.DestinationAccountID != nil {
			effects[*m.DestinationAccountID] = effects[*m.DestinationAccountID].Add(m.Amount)
		}
	}
	return effects
}

// ReversalEffects is the exact negation of BalanceEffects.
func (m Movement) ReversalEffects() map[string]decimal.Decimal {
	effects := m.BalanceEffects()
	for id, v := range effects {
		effects[id] = v.Neg()
	}
	return effects
}

// SourceKind is the kind of collaborator record an automatic movement derives from.
type SourceKind string

const (
	SourceInvoice SourceKind = "invoice"
	SourcePayment SourceKind = "payment"
)

// NaturalKey identifies an automatic leg: at most one active movement exists per key.
type NaturalKey struct {
	AziendaID     string
	Source        SourceKind
	DocumentID    string
	OperationType OperationType
	AccountRole   AccountRole
}

// Matches reports whether m is the leg identified by the key.
func (k NaturalKey) Matches(m Movement) bool {
	if m.AziendaID != k.AziendaID || m.OperationType != k.OperationType || m.AccountRole != k.AccountRole {
		return false
	}
	var ref *string
	switch k.Source {
	case SourceInvoice:
		if m.PaymentID != nil {
			return false
		}
		ref = m.InvoiceID
	case SourcePayment:
		ref = m.PaymentID
	}
	return ref != nil && *ref == k.DocumentID
}

// MovementFilter narrows ListMovements.
type MovementFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	AccountID     *string
	CategoryID    *string
	OperationType *OperationType
	Status        *MovementStatus
	Origin        *MovementOrigin
	InvoiceID     *string
	Limit         int
	NextToken     *string
}

// MovementSummary totals the liquidity movements matched by a filter.
type MovementSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MovementPage is one page of ListMovements.
type MovementPage struct {
	Movements []Movement      `json:"movements"`
	Summary   MovementSummary `json:"summary"`
	NextToken *string         `json:"nextToken,omitempty"`
}
