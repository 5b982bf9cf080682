package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/SscSPs/prima_nota/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the health check and the authenticated API.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	{
		RegisterMovementRoutes(v1, services.Movement)
		RegisterAccountRoutes(v1, services.Account)
		RegisterCategoryRoutes(v1, services.Category)
		RegisterDocumentRoutes(v1, services.DocumentLink)
		RegisterAutomationRoutes(v1, services)
	}
}
