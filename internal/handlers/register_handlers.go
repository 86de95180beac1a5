package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// Extra middleware (rate limiting, an authentication gate) applies to the /api/v1 group only.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	registerValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, services, apiMiddleware...)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	service *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", apiMiddleware...)

	registerMemberRoutes(v1, service.Ledger, service.Signature)
	registerSignatureRoutes(v1, service.Signature)

	h := newMemberHandler(service.Ledger)
	v1.POST("/reconcile", h.reconcileAll)
}
