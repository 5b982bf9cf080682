package dto

import (
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name             string                   `json:"name" binding:"required,max=120"`
	AccountType      domain.AccountType       `json:"accountType" binding:"required,oneof=cash bank"`
	OpeningBalance   decimal.Decimal          `json:"openingBalance"`
	TransferStrategy *domain.TransferStrategy `json:"transferStrategy" binding:"omitempty,oneof=automatic manual"`
	Note             string                   `json:"note"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name             *string                  `json:"name" binding:"omitempty,max=120"`
	AccountType      *domain.AccountType      `json:"accountType" binding:"omitempty,oneof=cash bank"`
	OpeningBalance   *decimal.Decimal         `json:"openingBalance"`
	TransferStrategy *domain.TransferStrategy `json:"transferStrategy" binding:"omitempty,oneof=automatic manual"`
	Note             *string                  `json:"note"`
	IsActive         *bool                    `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string                  `json:"accountID"`
	Name             string                  `json:"name"`
	AccountType      domain.AccountType      `json:"accountType"`
	OpeningBalance   decimal.Decimal         `json:"openingBalance"`
	Balance          decimal.Decimal         `json:"balance"`
	IsActive         bool                    `json:"isActive"`
	TransferStrategy domain.TransferStrategy `json:"transferStrategy"`
	Note             string                  `json:"note"`
	System           bool                    `json:"system"`
	CreatedAt        time.Time               `json:"createdAt"`
	CreatedBy        string                  `json:"createdBy"`
	LastUpdatedAt    time.Time               `json:"lastUpdatedAt"`
	LastUpdatedBy    string                  `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		Name:             acc.Name,
		AccountType:      acc.AccountType,
		OpeningBalance:   acc.OpeningBalance,
		Balance:          acc.Balance,
		IsActive:         acc.IsActive,
		TransferStrategy: acc.TransferStrategy,
		Note:             acc.Note,
		System:           acc.System,
		CreatedAt:        acc.CreatedAt,
		CreatedBy:        acc.CreatedBy,
		LastUpdatedAt:    acc.LastUpdatedAt,
		LastUpdatedBy:    acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// CleanupAccountsResponse lists the auxiliary accounts removed by a cleanup.
type CleanupAccountsResponse struct {
	DeletedAccountIDs []string `json:"deletedAccountIDs"`
}
