package dto

import (
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentLinkRequest links part of a movement to a document.
type DocumentLinkRequest struct {
	DocumentType domain.DocumentType `json:"documentType" binding:"required"`
	DocumentID   string              `json:"documentID" binding:"required"`
	Amount       decimal.Decimal     `json:"amount" binding:"decimal_gte0"`
}

// CreateMovementRequest defines the data needed to record a movement.
type CreateMovementRequest struct {
	SourceAccountID      string                `json:"sourceAccountID" binding:"required"`
	DestinationAccountID *string               `json:"destinationAccountID"`
	CategoryID           *string               `json:"categoryID"`
	OperationType        domain.OperationType  `json:"operationType" binding:"required,oneof=income expense transfer"`
	Status               domain.MovementStatus `json:"status" binding:"omitempty,oneof=provisional definitive"`
	Origin               domain.MovementOrigin `json:"origin" binding:"omitempty,oneof=manual reconciliation"`
	Date                 time.Time             `json:"date" binding:"required"`
	Description          string                `json:"description" binding:"max=255"`
	Amount               decimal.Decimal       `json:"amount" binding:"decimal_gte0"`
	Counterpart          string                `json:"counterpart"`
	Note                 string                `json:"note"`
	InvoiceID            *string               `json:"invoiceID"`
	PaymentID            *string               `json:"paymentID"`
	BatchID              *string               `json:"batchID"`
	EquipmentID          *string               `json:"equipmentID"`
	ContractID           *string               `json:"contractID"`
	Links                []DocumentLinkRequest `json:"links" binding:"dive"`
}

// UpdateMovementRequest is a patch: nil fields are left untouched.
type UpdateMovementRequest struct {
	SourceAccountID      *string                `json:"sourceAccountID"`
	DestinationAccountID *string                `json:"destinationAccountID"`
	CategoryID           *string                `json:"categoryID"`
	OperationType        *domain.OperationType  `json:"operationType" binding:"omitempty,oneof=income expense transfer"`
	Date                 *time.Time             `json:"date"`
	Description          *string                `json:"description" binding:"omitempty,max=255"`
	Amount               *decimal.Decimal       `json:"amount" binding:"omitempty,decimal_gte0"`
	Counterpart          *string                `json:"counterpart"`
	Note                 *string                `json:"note"`
	BatchID              *string                `json:"batchID"`
	EquipmentID          *string                `json:"equipmentID"`
	Links                *[]DocumentLinkRequest `json:"links" binding:"omitempty,dive"`
}

// SetLinksRequest replaces the whole link set of a movement.
type SetLinksRequest struct {
	Links []DocumentLinkRequest `json:"links" binding:"dive"`
}

// ListMovementsParams defines query parameters for listing movements.
type ListMovementsParams struct {
	DateFrom      *time.Time             `form:"dateFrom" time_format:"2006-01-02" time_utc:"1"`
	DateTo        *time.Time             `form:"dateTo" time_format:"2006-01-02" time_utc:"1"`
	AccountID     *string                `form:"accountID"`
	CategoryID    *string                `form:"categoryID"`
	OperationType *domain.OperationType  `form:"operationType" binding:"omitempty,oneof=income expense transfer"`
	Status        *domain.MovementStatus `form:"status" binding:"omitempty,oneof=provisional definitive"`
	Origin        *domain.MovementOrigin `form:"origin" binding:"omitempty,oneof=manual automatic reconciliation transfer"`
	InvoiceID     *string                `form:"invoiceID"`
	Limit         int                    `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken     *string                `form:"nextToken"`
}

// ToFilter converts the query parameters to a domain filter.
func (p ListMovementsParams) ToFilter() domain.MovementFilter {
	return domain.MovementFilter{
		DateFrom:      p.DateFrom,
		DateTo:        p.DateTo,
		AccountID:     p.AccountID,
		CategoryID:    p.CategoryID,
		OperationType: p.OperationType,
		Status:        p.Status,
		Origin:        p.Origin,
		InvoiceID:     p.InvoiceID,
		Limit:         p.Limit,
		NextToken:     p.NextToken,
	}
}

// ToDocumentLinks converts link requests to domain links for movementID.
func ToDocumentLinks(movementID string, reqs []DocumentLinkRequest) []domain.DocumentLink {
	links := make([]domain.DocumentLink, len(reqs))
	for i, r := range reqs {
		links[i] = domain.DocumentLink{
			MovementID:   movementID,
			DocumentType: r.DocumentType,
			DocumentID:   r.DocumentID,
			Amount:       r.Amount,
		}
	}
	return links
}

// ListMovementsResponse is one page of movements with the filter's totals.
type ListMovementsResponse struct {
	Movements []domain.Movement      `json:"movements"`
	Summary   domain.MovementSummary `json:"summary"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToListMovementsResponse converts a movement page.
func ToListMovementsResponse(page *domain.MovementPage) ListMovementsResponse {
	movements := page.Movements
	if movements == nil {
		movements = []domain.Movement{}
	}
	return ListMovementsResponse{Movements: movements, Summary: page.Summary, NextToken: page.NextToken}
}
