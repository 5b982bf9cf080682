package mapping

import (
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/models"
)

// ToModelAuditFields converts a domain AuditFields to a model AuditFields
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToDomainAuditFields converts a model AuditFields to a domain AuditFields
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// ToModelLifecycle converts the soft-delete state for storage.
func ToModelLifecycle(d domain.Lifecycle) models.Lifecycle {
	state := d.State
	if state == "" {
		state = domain.StateActive
	}
	return models.Lifecycle{State: string(state), DeletedAt: d.DeletedAt}
}

// ToDomainLifecycle converts the stored soft-delete state.
func ToDomainLifecycle(m models.Lifecycle) domain.Lifecycle {
	return domain.Lifecycle{State: domain.LifecycleState(m.State), DeletedAt: m.DeletedAt}
}

// ToDomainSlice converts every model of a slice with convert.
func ToDomainSlice[M any, D any](ms []M, convert func(M) D) []D {
	ds := make([]D, len(ms))
	for i, m := range ms {
		ds[i] = convert(m)
	}
	return ds
}
