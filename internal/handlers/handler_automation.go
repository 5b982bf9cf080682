package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/gin-gonic/gin"
)

// automationHandler exposes setup, document sync, distribution and preferences.
type automationHandler struct {
	setupService       portssvc.SetupSvc
	automationService  portssvc.AutomationSvcFacade
	distributor        portssvc.PartitaDistributorSvc
	preferencesService portssvc.PreferencesSvcFacade
}

// RegisterAutomationRoutes registers the setup, sync, distribution and preferences routes.
func RegisterAutomationRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &automationHandler{
		setupService:       services.Setup,
		automationService:  services.Automation,
		distributor:        services.Distributor,
		preferencesService: services.Preferences,
	}

	rg.POST("/setup", h.setup)

	sync := rg.Group("/sync")
	{
		sync.POST("", h.syncAll)
		sync.POST("/invoices/:id", h.syncInvoice)
		sync.POST("/payments/:id", h.syncPayment)
		sync.POST("/contracts/:id/settlement", h.settleContract)
	}

	rg.POST("/distribution/preview", h.previewDistribution)

	rg.GET("/preferences", h.getPreferences)
	rg.PUT("/preferences", h.updatePreferences)
}

// setup creates the chart, the system categories, a liquidity account and the default bindings.
func (h *automationHandler) setup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	if err := h.setupService.EnsureDefaultSetup(c.Request.Context(), aziendaID, userID); err != nil {
		respondError(c, logger, err, "Failed to set up azienda")
		return
	}

	prefs, err := h.preferencesService.GetPreferences(c.Request.Context(), aziendaID)
	if err != nil {
		respondError(c, logger, err, "Failed to load preferences")
		return
	}
	logger.Info("Azienda setup completed")
	c.JSON(http.StatusOK, prefs)
}

// syncAll re-syncs every invoice of the caller's azienda. The body is optional.
func (h *automationHandler) syncAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	var req dto.SyncAllRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, logger, &req) {
		return
	}

	scope := &aziendaID
	if req.AllAziende {
		scope = nil
	}

	report, err := h.automationService.SyncAll(c.Request.Context(), scope, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to sync documents")
		return
	}
	if report.Errors == nil {
		report.Errors = []domain.SyncError{}
	}

	logger.Info("Sync completed",
		slog.Int("processed", report.Processed),
		slog.Int("total", report.Total),
		slog.Int("failed", len(report.Errors)))
	c.JSON(http.StatusOK, report)
}

func (h *automationHandler) syncInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	invoiceID := c.Param("id")
	logger = logger.With(slog.String("invoice_id", invoiceID))

	movements, err := h.automationService.SyncForInvoice(c.Request.Context(), aziendaID, invoiceID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to sync invoice")
		return
	}
	if movements == nil {
		movements = []domain.Movement{}
	}
	c.JSON(http.StatusOK, movements)
}

// syncPayment answers 204 when the payment produces no movement.
func (h *automationHandler) syncPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	paymentID := c.Param("id")
	logger = logger.With(slog.String("payment_id", paymentID))

	movement, err := h.automationService.SyncForPayment(c.Request.Context(), aziendaID, paymentID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to sync payment")
		return
	}
	if movement == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func (h *automationHandler) settleContract(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}
	contractID := c.Param("id")
	logger = logger.With(slog.String("contract_id", contractID))

	var req dto.ContractSettlementRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	result, err := h.automationService.SyncForContractSettlement(
		c.Request.Context(), aziendaID, contractID, req.Amount, req.Date, req.BatchIDs, req.Final, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to settle contract")
		return
	}

	logger.Info("Contract settled",
		slog.String("movement_id", result.Movement.MovementID),
		slog.Int("allocations", len(result.Allocations)),
		slog.Bool("final", req.Final))
	c.JSON(http.StatusCreated, dto.SettlementResponse{Movement: result.Movement, Allocations: result.Allocations})
}

// previewDistribution computes shares without persisting anything.
func (h *automationHandler) previewDistribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, _, ok := identity(c, logger); !ok {
		return
	}

	var req dto.DistributionPreviewRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	shares, err := h.distributor.Distribute(req.Total, req.ToDistributionTargets())
	if err != nil {
		respondError(c, logger, err, "Failed to compute distribution")
		return
	}
	c.JSON(http.StatusOK, shares)
}

func (h *automationHandler) getPreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	prefs, err := h.preferencesService.GetPreferences(c.Request.Context(), aziendaID)
	if err != nil {
		respondError(c, logger, err, "Failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *automationHandler) updatePreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	var req dto.UpdatePreferencesRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	prefs, err := h.preferencesService.SetPreferences(c.Request.Context(), aziendaID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update preferences")
		return
	}
	logger.Info("Preferences updated")
	c.JSON(http.StatusOK, prefs)
}
