package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/gin-gonic/gin"
)

type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

func newCategoryHandler(cs portssvc.CategorySvcFacade) *categoryHandler {
	return &categoryHandler{categoryService: cs}
}

// RegisterCategoryRoutes registers routes related to categories.
func RegisterCategoryRoutes(rg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := newCategoryHandler(categoryService)

	categories := rg.Group("/categories")
	{
		categories.GET("", h.listCategories)
		categories.POST("", h.createCategory)
		categories.PUT("/:id", h.updateCategory)
		categories.DELETE("/:id", h.deleteCategory)
	}
}

// listCategories returns the azienda's categories followed by the global ones.
func (h *categoryHandler) listCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	var params dto.ListCategoriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListCategories", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), aziendaID, params.OperationType)
	if err != nil {
		respondError(c, logger, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCategoryResponse(categories))
}

func (h *categoryHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), aziendaID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create category")
		return
	}

	logger.Info("Category created successfully", slog.String("category_id", category.CategoryID))
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

func (h *categoryHandler) updateCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	categoryID := c.Param("id")
	logger = logger.With(slog.String("category_id", categoryID))

	var req dto.UpdateCategoryRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), aziendaID, categoryID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// deleteCategory removes an unused category; a used one is deactivated instead.
func (h *categoryHandler) deleteCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	categoryID := c.Param("id")
	logger = logger.With(slog.String("category_id", categoryID))

	deleted, err := h.categoryService.DeleteCategory(c.Request.Context(), aziendaID, categoryID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to delete category")
		return
	}

	logger.Info("Category removed", slog.Bool("deleted", deleted))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "deactivated": !deleted})
}
