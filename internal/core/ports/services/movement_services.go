package services

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
)

// MovementReaderSvc defines read operations for movements
type MovementReaderSvc interface {
	GetMovement(ctx context.Context, aziendaID string, movementID string) (*domain.Movement, error)
	ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (*domain.MovementPage, error)
}

// MovementWriterSvc defines the movement state machine
type MovementWriterSvc interface {
	CreateMovement(ctx context.Context, aziendaID string, req dto.CreateMovementRequest, userID string) (*domain.Movement, error)
	UpdateMovement(ctx context.Context, aziendaID string, movementID string, req dto.UpdateMovementRequest, userID string) (*domain.Movement, error)

	// DeleteMovement is idempotent.
	DeleteMovement(ctx context.Context, aziendaID string, movementID string, userID string) error

	// ConfirmMovement is idempotent.
	ConfirmMovement(ctx context.Context, aziendaID string, movementID string, userID string) (*domain.Movement, error)

	// SetMovementLinks replaces the links of a movement, moving paid amounts when it is applied.
	SetMovementLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink, userID string) (*domain.Movement, error)
}

// MovementUpserter is used by automation.
type MovementUpserter interface {
	// Upsert creates or updates the movement identified by key. A zero amount
	// deletes an existing leg and creates nothing. Returns nil when no movement remains.
	Upsert(ctx context.Context, key domain.NaturalKey, payload domain.Movement, userID string) (*domain.Movement, error)

	// RecordAutomatic stores a system-produced movement that has no natural key.
	RecordAutomatic(ctx context.Context, movement domain.Movement, userID string) (*domain.Movement, error)
}

// MovementSvcFacade combines all movement-related service interfaces
type MovementSvcFacade interface {
	MovementReaderSvc
	MovementWriterSvc
	MovementUpserter
}
