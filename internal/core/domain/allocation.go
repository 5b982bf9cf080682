package domain

import (
	"github.com/shopspring/decimal"
)

// BatchAllocation is one share of a distributed amount.
type BatchAllocation struct {
	AllocationID string          `json:"allocationID"`
	MovementID   *string         `json:"movementID,omitempty"`
	BatchID      string          `json:"batchID"`
	Amount       decimal.Decimal `json:"amount"`
	Weight       decimal.Decimal `json:"weight"` // head count at allocation time
	Lifecycle
}

// DistributionTarget is a weighted recipient of a distribution run.
type DistributionTarget struct {
	BatchID string          `json:"batchID"`
	Weight  decimal.Decimal `json:"weight"`
}

// Share is the output of a distribution run for one target.
type Share struct {
	BatchID string          `json:"batchID"`
	Weight  decimal.Decimal `json:"weight"`
	Amount  decimal.Decimal `json:"amount"`
}
