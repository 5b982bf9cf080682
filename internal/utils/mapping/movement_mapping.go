package mapping

import (
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/models"
)

// ToModelMovement converts a domain Movement to a model Movement. Links are stored separately.
func ToModelMovement(d domain.Movement) models.Movement {
	return models.Movement{
		MovementID:           d.MovementID,
		AziendaID:            d.AziendaID,
		SourceAccountID:      d.SourceAccountID,
		DestinationAccountID: d.DestinationAccountID,
		CategoryID:           d.CategoryID,
		OperationType:        string(d.OperationType),
		Status:               string(d.Status),
		Origin:               string(d.Origin),
		Date:                 d.Date,
		Description:          d.Description,
		Amount:               d.Amount,
		Counterpart:          d.Counterpart,
		Note:                 d.Note,
		InvoiceID:            d.InvoiceID,
		PaymentID:            d.PaymentID,
		BatchID:              d.BatchID,
		EquipmentID:          d.EquipmentID,
		ContractID:           d.ContractID,
		AccountRole:          string(d.AccountRole),
		Lifecycle:            ToModelLifecycle(d.Lifecycle),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMovement converts a model Movement to a domain Movement
func ToDomainMovement(m models.Movement) domain.Movement {
	return domain.Movement{
		MovementID:           m.MovementID,
		AziendaID:            m.AziendaID,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		CategoryID:           m.CategoryID,
		OperationType:        domain.OperationType(m.OperationType),
		Status:               domain.MovementStatus(m.Status),
		Origin:               domain.MovementOrigin(m.Origin),
		Date:                 m.Date,
		Description:          m.Description,
		Amount:               m.Amount,
		Counterpart:          m.Counterpart,
		Note:                 m.Note,
		InvoiceID:            m.InvoiceID,
		PaymentID:            m.PaymentID,
		BatchID:              m.BatchID,
		EquipmentID:          m.EquipmentID,
		ContractID:           m.ContractID,
		AccountRole:          domain.AccountRole(m.AccountRole),
		Lifecycle:            ToDomainLifecycle(m.Lifecycle),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDocumentLink converts a model DocumentLink to a domain DocumentLink
func ToDomainDocumentLink(m models.DocumentLink) domain.DocumentLink {
	return domain.DocumentLink{
		MovementID:   m.MovementID,
		DocumentType: domain.DocumentType(m.DocumentType),
		DocumentID:   m.DocumentID,
		Amount:       m.Amount,
	}
}

// ToModelBatchAllocation converts a domain BatchAllocation to a model BatchAllocation
func ToModelBatchAllocation(d domain.BatchAllocation) models.BatchAllocation {
	return models.BatchAllocation{
		AllocationID: d.AllocationID,
		MovementID:   d.MovementID,
		BatchID:      d.BatchID,
		Amount:       d.Amount,
		Weight:       d.Weight,
		Lifecycle:    ToModelLifecycle(d.Lifecycle),
	}
}

// ToDomainBatchAllocation converts a model BatchAllocation to a domain BatchAllocation
func ToDomainBatchAllocation(m models.BatchAllocation) domain.BatchAllocation {
	return domain.BatchAllocation{
		AllocationID: m.AllocationID,
		MovementID:   m.MovementID,
		BatchID:      m.BatchID,
		Amount:       m.Amount,
		Weight:       m.Weight,
		Lifecycle:    ToDomainLifecycle(m.Lifecycle),
	}
}
