package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/gin-gonic/gin"
)

// movementHandler handles HTTP requests related to Prima Nota movements.
type movementHandler struct {
	movementService portssvc.MovementSvcFacade
}

func newMovementHandler(ms portssvc.MovementSvcFacade) *movementHandler {
	return &movementHandler{movementService: ms}
}

// RegisterMovementRoutes registers routes related to movements.
func RegisterMovementRoutes(rg *gin.RouterGroup, movementService portssvc.MovementSvcFacade) {
	h := newMovementHandler(movementService)

	movements := rg.Group("/movements")
	{
		movements.POST("", h.createMovement)
		movements.GET("", h.listMovements)
		movements.GET("/:id", h.getMovement)
		movements.PUT("/:id", h.updateMovement)
		movements.DELETE("/:id", h.deleteMovement)
		movements.POST("/:id/confirm", h.confirmMovement)
		movements.PUT("/:id/links", h.setMovementLinks)
	}
}

// createMovement records a manual movement.
func (h *movementHandler) createMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	var req dto.CreateMovementRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger.Info("Received request to create movement",
		slog.String("operation_type", string(req.OperationType)),
		slog.String("amount", req.Amount.String()))

	movement, err := h.movementService.CreateMovement(c.Request.Context(), aziendaID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create movement")
		return
	}

	logger.Info("Movement created successfully", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, movement)
}

// listMovements returns one page of movements and the totals of the filter.
func (h *movementHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListMovements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.movementService.ListMovements(c.Request.Context(), aziendaID, params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list movements")
		return
	}

	logger.Debug("Movements listed", slog.Int("count", len(page.Movements)))
	c.JSON(http.StatusOK, dto.ToListMovementsResponse(page))
}

func (h *movementHandler) getMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	movementID := c.Param("id")

	movement, err := h.movementService.GetMovement(c.Request.Context(), aziendaID, movementID)
	if err != nil {
		respondError(c, logger.With(slog.String("movement_id", movementID)), err, "Failed to retrieve movement")
		return
	}
	c.JSON(http.StatusOK, movement)
}

// updateMovement applies a partial update; effects are reversed and re-applied atomically.
func (h *movementHandler) updateMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	movementID := c.Param("id")
	logger = logger.With(slog.String("movement_id", movementID))

	var req dto.UpdateMovementRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	movement, err := h.movementService.UpdateMovement(c.Request.Context(), aziendaID, movementID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update movement")
		return
	}

	logger.Info("Movement updated successfully")
	c.JSON(http.StatusOK, movement)
}

func (h *movementHandler) deleteMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	movementID := c.Param("id")
	logger = logger.With(slog.String("movement_id", movementID))

	if err := h.movementService.DeleteMovement(c.Request.Context(), aziendaID, movementID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete movement")
		return
	}

	logger.Info("Movement deleted successfully")
	c.Status(http.StatusNoContent)
}

// confirmMovement promotes a provisional movement to definitive.
func (h *movementHandler) confirmMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	movementID := c.Param("id")
	logger = logger.With(slog.String("movement_id", movementID))

	movement, err := h.movementService.ConfirmMovement(c.Request.Context(), aziendaID, movementID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to confirm movement")
		return
	}

	logger.Info("Movement confirmed")
	c.JSON(http.StatusOK, movement)
}

func (h *movementHandler) setMovementLinks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	movementID := c.Param("id")
	logger = logger.With(slog.String("movement_id", movementID))

	var req dto.SetLinksRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	links := dto.ToDocumentLinks(movementID, req.Links)
	movement, err := h.movementService.SetMovementLinks(c.Request.Context(), aziendaID, movementID, links, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to set movement links")
		return
	}

	logger.Info("Movement links replaced", slog.Int("links", len(links)))
	c.JSON(http.StatusOK, movement)
}
