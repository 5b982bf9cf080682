package handlers

import (
	"net/http"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/gin-gonic/gin"
)

type documentHandler struct {
	linkService portssvc.DocumentLinkSvcFacade
}

// RegisterDocumentRoutes registers the document lookup routes used when linking movements.
func RegisterDocumentRoutes(rg *gin.RouterGroup, linkService portssvc.DocumentLinkSvcFacade) {
	h := &documentHandler{linkService: linkService}
	rg.GET("/documents/open", h.getOpenDocuments)
}

// getOpenDocuments lists invoices with a residual, earliest due date first.
func (h *documentHandler) getOpenDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, aziendaID, ok := identity(c, logger)
	if !ok {
		return
	}

	docs, err := h.linkService.GetOpenDocuments(c.Request.Context(), aziendaID)
	if err != nil {
		respondError(c, logger, err, "Failed to list open documents")
		return
	}
	if docs == nil {
		docs = []domain.OpenDocument{}
	}
	c.JSON(http.StatusOK, docs)
}
