package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/SscSPs/prima_nota/internal/models"
	"github.com/SscSPs/prima_nota/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `category_id, azienda_id, name, code, operation_type, macro_category, ordinal,
	is_active, is_system, created_at, created_by, last_updated_at, last_updated_by`

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.CategoryID, m.AziendaID, m.Name, m.Code, m.OperationType, m.MacroCategory, m.Ordinal,
		m.IsActive, m.IsSystem, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "category "+m.CategoryID)
	}
	return nil
}

func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	tag, err := r.DB(ctx).Exec(ctx, `
		UPDATE categories
		SET name = $2, code = $3, operation_type = $4, macro_category = $5, ordinal = $6,
		    is_active = $7, is_system = $8, last_updated_at = $9, last_updated_by = $10
		WHERE category_id = $1;`,
		m.CategoryID, m.Name, m.Code, m.OperationType, m.MacroCategory, m.Ordinal,
		m.IsActive, m.IsSystem, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "category "+m.CategoryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, m.CategoryID)
	}
	return nil
}

func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return mapWriteError(err, "category "+categoryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, categoryID)
	}
	return nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	m, err := collectOne[models.Category](r.DB(ctx).Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE category_id = $1;`, categoryID))
	if err != nil {
		return nil, notFound(err, "category "+categoryID)
	}
	c := mapping.ToDomainCategory(m)
	return &c, nil
}

// ListCategories returns azienda-specific categories first, then the global ones.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, aziendaID *string) ([]domain.Category, error) {
	rows, err := collect[models.Category](r.DB(ctx).Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE azienda_id IS NULL OR azienda_id = $1
		ORDER BY (azienda_id IS NULL), ordinal, name, category_id;`, aziendaID))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainCategory), nil
}
