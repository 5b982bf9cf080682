package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
)

func (s *Store) SaveCategory(ctx context.Context, category domain.Category) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.categories[category.CategoryID]; exists {
			return apperrors.Duplicatef("category with ID %s already exists", category.CategoryID)
		}
		st.categories[category.CategoryID] = category
		return nil
	})
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.categories[category.CategoryID]; !exists {
			return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, category.CategoryID)
		}
		st.categories[category.CategoryID] = category
		return nil
	})
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.categories[categoryID]; !exists {
			return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, categoryID)
		}
		delete(st.categories, categoryID)
		return nil
	})
}

func (s *Store) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	var out *domain.Category
	err := s.read(ctx, func(st *state) error {
		c, ok := st.categories[categoryID]
		if !ok {
			return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, categoryID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) ListCategories(ctx context.Context, aziendaID *string) ([]domain.Category, error) {
	var out []domain.Category
	err := s.read(ctx, func(st *state) error {
		for _, c := range st.categories {
			if c.AziendaID == nil || (aziendaID != nil && *c.AziendaID == *aziendaID) {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsGlobal() != b.IsGlobal() {
			return !a.IsGlobal()
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CategoryID < b.CategoryID
	})
	return out, err
}
