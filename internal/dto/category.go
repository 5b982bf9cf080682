package dto

import "github.com/SscSPs/prima_nota/internal/core/domain"

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name          string               `json:"name" binding:"required,max=120"`
	Code          string               `json:"code" binding:"max=40"`
	OperationType domain.OperationType `json:"operationType" binding:"required,oneof=income expense transfer"`
	MacroCategory string               `json:"macroCategory"`
	Ordinal       int                  `json:"ordinal"`
}

// UpdateCategoryRequest defines the editable fields of a category.
type UpdateCategoryRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=120"`
	Code          *string `json:"code" binding:"omitempty,max=40"`
	MacroCategory *string `json:"macroCategory"`
	Ordinal       *int    `json:"ordinal"`
	IsActive      *bool   `json:"isActive"`
}

// ListCategoriesParams defines query parameters for listing categories.
type ListCategoriesParams struct {
	OperationType *domain.OperationType `form:"operationType" binding:"omitempty,oneof=income expense transfer"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID    string               `json:"categoryID"`
	Name          string               `json:"name"`
	Code          string               `json:"code"`
	OperationType domain.OperationType `json:"operationType"`
	MacroCategory string               `json:"macroCategory"`
	Ordinal       int                  `json:"ordinal"`
	IsActive      bool                 `json:"isActive"`
	IsSystem      bool                 `json:"isSystem"`
	Global        bool                 `json:"global"`
}

// ToCategoryResponse converts a domain.Category to CategoryResponse DTO
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:    c.CategoryID,
		Name:          c.Name,
		Code:          c.Code,
		OperationType: c.OperationType,
		MacroCategory: c.MacroCategory,
		Ordinal:       c.Ordinal,
		IsActive:      c.IsActive,
		IsSystem:      c.IsSystem,
		Global:        c.IsGlobal(),
	}
}

// ToListCategoryResponse converts categories to response DTOs
func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		res[i] = ToCategoryResponse(&c)
	}
	return res
}
