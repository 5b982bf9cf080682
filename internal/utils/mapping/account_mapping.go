package mapping

import (
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:        d.AccountID,
		AziendaID:        d.AziendaID,
		Name:             d.Name,
		AccountType:      string(d.AccountType),
		OpeningBalance:   d.OpeningBalance,
		Balance:          d.Balance,
		IsActive:         d.IsActive,
		TransferStrategy: string(d.TransferStrategy),
		Note:             d.Note,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:        m.AccountID,
		AziendaID:        m.AziendaID,
		Name:             m.Name,
		AccountType:      domain.AccountType(m.AccountType),
		OpeningBalance:   m.OpeningBalance,
		Balance:          m.Balance,
		IsActive:         m.IsActive,
		TransferStrategy: domain.TransferStrategy(m.TransferStrategy),
		Note:             m.Note,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCategory converts a domain Category to a model Category
func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:    d.CategoryID,
		AziendaID:     d.AziendaID,
		Name:          d.Name,
		Code:          d.Code,
		OperationType: string(d.OperationType),
		MacroCategory: d.MacroCategory,
		Ordinal:       d.Ordinal,
		IsActive:      d.IsActive,
		IsSystem:      d.IsSystem,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategory converts a model Category to a domain Category
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:    m.CategoryID,
		AziendaID:     m.AziendaID,
		Name:          m.Name,
		Code:          m.Code,
		OperationType: domain.OperationType(m.OperationType),
		MacroCategory: m.MacroCategory,
		Ordinal:       m.Ordinal,
		IsActive:      m.IsActive,
		IsSystem:      m.IsSystem,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPreferences converts domain Preferences to a model row.
func ToModelPreferences(d domain.Preferences) models.Preferences {
	return models.Preferences(d)
}

// ToDomainPreferences converts a model row to domain Preferences.
func ToDomainPreferences(m models.Preferences) domain.Preferences {
	return domain.Preferences(m)
}
