package repositories

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
)

// CategoryReader defines read operations for categories
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories returns the global categories plus, when aziendaID is not nil,
	// the ones owned by that azienda. Ordered by scope-specific first, then ordinal, then name.
	ListCategories(ctx context.Context, aziendaID *string) ([]domain.Category, error)
}

// CategoryWriter defines write operations for categories
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	UpdateCategory(ctx context.Context, category domain.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
