package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MovementReader defines read operations for movements
type MovementReader interface {
	// FindMovementByID returns the movement, deleted ones included.
	FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error)

	// FindMovementForUpdate locks the movement row within the context transaction.
	FindMovementForUpdate(ctx context.Context, movementID string) (*domain.Movement, error)

	// FindActiveMovementByKey returns the non-deleted movement matching an automation key.
	FindActiveMovementByKey(ctx context.Context, key domain.NaturalKey) (*domain.Movement, error)

	// ListMovements returns one page of active movements ordered by date desc, created_at desc, id desc,
	// and the token of the next page when there is one.
	ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) ([]domain.Movement, *string, error)

	// SummarizeMovements totals definitive active income/expense movements whose source is a liquidity account.
	SummarizeMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (domain.MovementSummary, error)

	// CountMovementsByAccount counts movements using the account as source or destination.
	CountMovementsByAccount(ctx context.Context, accountID string, includeDeleted bool) (int, error)

	// CountMovementsByCategory counts movements, deleted ones included, classified under the category.
	CountMovementsByCategory(ctx context.Context, categoryID string) (int, error)
}

// MovementWriter defines write operations for movements
type MovementWriter interface {
	SaveMovement(ctx context.Context, movement domain.Movement) error
	UpdateMovement(ctx context.Context, movement domain.Movement) error
}

// DocumentLinkRepository stores the links between movements and documents.
type DocumentLinkRepository interface {
	ListLinksByMovement(ctx context.Context, movementID string) ([]domain.DocumentLink, error)

	// ReplaceLinks drops the movement's links and stores the given ones.
	ReplaceLinks(ctx context.Context, movementID string, links []domain.DocumentLink) error

	// SumLinkedAmount totals the links of active movements to a document,
	// ignoring the links of excludeMovementID.
	SumLinkedAmount(ctx context.Context, docType domain.DocumentType, documentID string, excludeMovementID string) (decimal.Decimal, error)
}

// AllocationRepository stores batch allocations.
type AllocationRepository interface {
	SaveAllocations(ctx context.Context, allocations []domain.BatchAllocation) error
	ListAllocationsByMovement(ctx context.Context, movementID string) ([]domain.BatchAllocation, error)
	SoftDeleteAllocationsByMovement(ctx context.Context, movementID string, now time.Time) error
}

// MovementRepositoryFacade combines all movement-related repository interfaces
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
}
