package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	categoryRepo portsrepo.CategoryRepositoryFacade
	movementRepo portsrepo.MovementReader
	defaults     []domain.SystemCategory
}

// NewCategoryService creates the category service. defaults are the global
// system categories EnsureSystemCategories creates.
func NewCategoryService(txManager portsrepo.TransactionManager, categoryRepo portsrepo.CategoryRepositoryFacade, movementRepo portsrepo.MovementReader, defaults []domain.SystemCategory) portssvc.CategorySvcFacade {
	return &categoryService{
		txManager:    txManager,
		categoryRepo: categoryRepo,
		movementRepo: movementRepo,
		defaults:     defaults,
	}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) visible(ctx context.Context, aziendaID string) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, &aziendaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) load(ctx context.Context, aziendaID, categoryID string) (*domain.Category, error) {
	c, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(aziendaID) {
		return nil, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, categoryID)
	}
	return c, nil
}

func checkDuplicateCategory(categories []domain.Category, name string, opType domain.OperationType, selfID string) error {
	n := domain.NormalizeName(name)
	for _, c := range categories {
		if c.CategoryID != selfID && c.OperationType == opType && domain.NormalizeName(c.Name) == n {
			return apperrors.Duplicatef("a %s category named %q already exists", opType, name)
		}
	}
	return nil
}

func (s *categoryService) CreateCategory(ctx context.Context, aziendaID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	name := strings.Join(strings.Fields(req.Name), " ")
	if name == "" {
		return nil, apperrors.Validationf("category name is required")
	}
	if !req.OperationType.IsValid() {
		return nil, apperrors.Validationf("unknown operation type %q", req.OperationType)
	}

	var category domain.Category
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.visible(ctx, aziendaID)
		if err != nil {
			return err
		}
		if err := checkDuplicateCategory(existing, name, req.OperationType, ""); err != nil {
			return err
		}
		category = domain.Category{
			CategoryID:    uuid.NewString(),
			AziendaID:     strPtr(aziendaID),
			Name:          name,
			Code:          strings.TrimSpace(req.Code),
			OperationType: req.OperationType,
			MacroCategory: req.MacroCategory,
			Ordinal:       req.Ordinal,
			IsActive:      true,
			AuditFields:   newAuditFields(userID, time.Now().UTC()),
		}
		return s.categoryRepo.SaveCategory(ctx, category)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create category", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	s.LogInfo(ctx, "Category created", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, aziendaID string, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error) {
	var updated domain.Category
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.load(ctx, aziendaID, categoryID)
		if err != nil {
			return err
		}
		renames := req.Name != nil && domain.NormalizeName(*req.Name) != domain.NormalizeName(c.Name)
		recodes := req.Code != nil && strings.TrimSpace(*req.Code) != c.Code
		if c.IsSystem && (renames || recodes) {
			return apperrors.Permissionf("system category %q cannot be renamed", c.Name)
		}
		if c.IsGlobal() && !c.IsSystem {
			return apperrors.Permissionf("global category %q cannot be changed", c.Name)
		}
		if renames {
			name := strings.Join(strings.Fields(*req.Name), " ")
			if name == "" {
				return apperrors.Validationf("category name is required")
			}
			existing, err := s.visible(ctx, aziendaID)
			if err != nil {
				return err
			}
			if err := checkDuplicateCategory(existing, name, c.OperationType, c.CategoryID); err != nil {
				return err
			}
			c.Name = name
		}
		if recodes {
			c.Code = strings.TrimSpace(*req.Code)
		}
		if req.MacroCategory != nil {
			c.MacroCategory = *req.MacroCategory
		}
		if req.Ordinal != nil {
			c.Ordinal = *req.Ordinal
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		touch(&c.AuditFields, userID, time.Now().UTC())
		if err := s.categoryRepo.UpdateCategory(ctx, *c); err != nil {
			return err
		}
		updated = *c
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		return nil, err
	}
	return &updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, aziendaID string, categoryID string, userID string) (bool, error) {
	removed := false
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.load(ctx, aziendaID, categoryID)
		if err != nil {
			return err
		}
		if c.IsSystem || c.IsGlobal() {
			return apperrors.Permissionf("system category %q cannot be deleted", c.Name)
		}
		n, err := s.movementRepo.CountMovementsByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if n == 0 {
			removed = true
			return s.categoryRepo.DeleteCategory(ctx, categoryID)
		}
		c.IsActive = false
		touch(&c.AuditFields, userID, time.Now().UTC())
		return s.categoryRepo.UpdateCategory(ctx, *c)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return false, err
	}
	s.LogInfo(ctx, "Category deleted", slog.String("category_id", categoryID), slog.Bool("removed", removed))
	return removed, nil
}

func (s *categoryService) GetCategory(ctx context.Context, aziendaID string, categoryID string) (*domain.Category, error) {
	return s.load(ctx, aziendaID, categoryID)
}

func (s *categoryService) ListCategories(ctx context.Context, aziendaID string, opType *domain.OperationType) ([]domain.Category, error) {
	categories, err := s.visible(ctx, aziendaID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	out := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if opType == nil || c.OperationType == *opType {
			out = append(out, c)
		}
	}
	return out, nil
}

// ResolveCategory walks the priority chain: explicit id, hint contained in a
// name then a code, a name then a code contained in the hint, first active
// category of the operation type.
func (s *categoryService) ResolveCategory(ctx context.Context, aziendaID string, opType domain.OperationType, hint string, explicitID *string) (*domain.Category, error) {
	categories, err := s.visible(ctx, aziendaID)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive && c.OperationType == opType {
			candidates = append(candidates, c)
		}
	}

	if explicitID != nil {
		for i := range candidates {
			if candidates[i].CategoryID == *explicitID {
				return &candidates[i], nil
			}
		}
	}

	if h := domain.NormalizeName(hint); h != "" {
		fields := []func(domain.Category) string{
			func(c domain.Category) string { return c.Name },
			func(c domain.Category) string { return c.Code },
		}
		// The hint found inside a name or code, in candidate order.
		for _, field := range fields {
			for i := range candidates {
				if v := domain.NormalizeName(field(candidates[i])); v != "" && strings.Contains(v, h) {
					return &candidates[i], nil
				}
			}
		}
		// Otherwise a name or code found inside the hint; the longest one wins.
		for _, field := range fields {
			best, bestLen := -1, 0
			for i := range candidates {
				if v := domain.NormalizeName(field(candidates[i])); v != "" && strings.Contains(h, v) && len(v) > bestLen {
					best, bestLen = i, len(v)
				}
			}
			if best >= 0 {
				return &candidates[best], nil
			}
		}
	}

	if len(candidates) > 0 {
		return &candidates[0], nil
	}
	return nil, nil
}

// EnsureSystemCategories creates the missing global categories. A concurrent
// bootstrap can win the race on some names; the run is then repeated once
// against the committed rows.
func (s *categoryService) EnsureSystemCategories(ctx context.Context, userID string) error {
	created, err := s.createMissingSystemCategories(ctx, userID)
	if errors.Is(err, apperrors.ErrDuplicate) {
		s.LogDebug(ctx, "System categories created concurrently, retrying")
		created, err = s.createMissingSystemCategories(ctx, userID)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to ensure system categories")
		return err
	}
	if created > 0 {
		s.LogInfo(ctx, "System categories created", slog.Int("created", created))
	}
	return nil
}

func (s *categoryService) createMissingSystemCategories(ctx context.Context, userID string) (int, error) {
	created := 0
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		created = 0
		existing, err := s.categoryRepo.ListCategories(ctx, nil)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i, def := range s.defaults {
			if checkDuplicateCategory(existing, def.Name, def.OperationType, "") != nil {
				continue
			}
			c := domain.Category{
				CategoryID:    uuid.NewString(),
				Name:          def.Name,
				Code:          def.Code,
				OperationType: def.OperationType,
				MacroCategory: def.MacroCategory,
				Ordinal:       (i + 1) * 10,
				IsActive:      true,
				IsSystem:      true,
				AuditFields:   newAuditFields(userID, now),
			}
			if err := s.categoryRepo.SaveCategory(ctx, c); err != nil {
				return err
			}
			existing = append(existing, c)
			created++
		}
		return nil
	})
	return created, err
}
