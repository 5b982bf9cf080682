package services

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
)

// CategorySvcFacade manages categories.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, aziendaID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, aziendaID string, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error)

	// DeleteCategory hard-deletes an unused category and deactivates a used one.
	// The returned bool is true when the category was removed.
	DeleteCategory(ctx context.Context, aziendaID string, categoryID string, userID string) (bool, error)

	GetCategory(ctx context.Context, aziendaID string, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context, aziendaID string, opType *domain.OperationType) ([]domain.Category, error)

	// ResolveCategory picks the category automation uses; nil when none exists.
	ResolveCategory(ctx context.Context, aziendaID string, opType domain.OperationType, hint string, explicitID *string) (*domain.Category, error)

	// EnsureSystemCategories creates the missing global system categories.
	EnsureSystemCategories(ctx context.Context, userID string) error
}
