package services

import (
	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type partitaDistributor struct{}

// NewPartitaDistributor creates the proportional distributor.
func NewPartitaDistributor() portssvc.PartitaDistributorSvc {
	return partitaDistributor{}
}

// Distribute splits total across targets in proportion to their weights. Each
// share is rounded to 4 decimals and then to 2 (half away from zero); the last
// target takes whatever is left, so the shares always sum to total. A share
// never exceeds what is still unallocated, so no share is negative.
func (partitaDistributor) Distribute(total decimal.Decimal, targets []domain.DistributionTarget) ([]domain.Share, error) {
	if len(targets) == 0 {
		return nil, apperrors.Validationf("at least one distribution target is required")
	}
	if total.IsNegative() {
		return nil, apperrors.Validationf("distributed amount must be >= 0")
	}
	sum := decimal.Zero
	for _, t := range targets {
		if t.Weight.IsNegative() {
			return nil, apperrors.Validationf("weight of batch %s is negative", t.BatchID)
		}
		sum = sum.Add(t.Weight)
	}
	if sum.IsZero() {
		return nil, apperrors.Validationf("distribution weights sum to zero")
	}

	total = total.Round(2)
	shares := make([]domain.Share, len(targets))
	allocated := decimal.Zero
	last := len(targets) - 1
	for i, t := range targets {
		amount := total.Sub(allocated)
		if i < last {
			amount = decimal.Min(total.Mul(t.Weight).Div(sum).Round(4).Round(2), total.Sub(allocated))
			allocated = allocated.Add(amount)
		}
		shares[i] = domain.Share{BatchID: t.BatchID, Weight: t.Weight, Amount: amount}
	}
	return shares, nil
}
