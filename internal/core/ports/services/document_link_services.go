package services

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
)

// LinkDirection says whether links are being applied or reversed.
type LinkDirection int

const (
	LinkApply   LinkDirection = 1
	LinkReverse LinkDirection = -1
)

// DocumentLinkSvcFacade maintains movement-document links and the paid amounts they produce.
type DocumentLinkSvcFacade interface {
	// SetLinks replaces the full link set of a movement.
	SetLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink) ([]domain.DocumentLink, error)

	// ApplyLinks moves the paid amount of every linked document by ±link amount.
	ApplyLinks(ctx context.Context, links []domain.DocumentLink, direction LinkDirection) error

	// ValidateLinks checks types, amounts, ownership and the per-document total.
	ValidateLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink) error

	GetOpenDocuments(ctx context.Context, aziendaID string) ([]domain.OpenDocument, error)
}
