package dto

import (
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ContractSettlementRequest triggers a soccida settlement.
type ContractSettlementRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Date     time.Time       `json:"date" binding:"required"`
	BatchIDs []string        `json:"batchIDs"`
	// Final closes the batches; a plain advance leaves them open.
	Final bool `json:"final"`
}

// SyncAllRequest limits a re-sync to one azienda; AllAziende syncs every azienda.
type SyncAllRequest struct {
	AllAziende bool `json:"allAziende"`
}

// DistributionPreviewRequest asks for the shares of a distribution run.
type DistributionPreviewRequest struct {
	Total   decimal.Decimal             `json:"total" binding:"decimal_gte0"`
	Targets []DistributionTargetRequest `json:"targets" binding:"required,min=1,dive"`
}

// DistributionTargetRequest is one weighted target.
type DistributionTargetRequest struct {
	BatchID string          `json:"batchID" binding:"required"`
	Weight  decimal.Decimal `json:"weight"`
}

// ToDistributionTargets converts the request targets.
func (r DistributionPreviewRequest) ToDistributionTargets() []domain.DistributionTarget {
	targets := make([]domain.DistributionTarget, len(r.Targets))
	for i, t := range r.Targets {
		targets[i] = domain.DistributionTarget{BatchID: t.BatchID, Weight: t.Weight}
	}
	return targets
}

// SettlementResponse is the outcome of a contract settlement.
type SettlementResponse struct {
	Movement    domain.Movement          `json:"movement"`
	Allocations []domain.BatchAllocation `json:"allocations"`
}

// UpdatePreferencesRequest is a patch of the account bindings. An empty string clears a binding.
type UpdatePreferencesRequest struct {
	DefaultCollectionAccountID *string `json:"defaultCollectionAccountID"`
	DefaultPaymentAccountID    *string `json:"defaultPaymentAccountID"`
	ReceivablesAccountID       *string `json:"receivablesAccountID"`
	PayablesAccountID          *string `json:"payablesAccountID"`
}
