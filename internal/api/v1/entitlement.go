package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillworks/billing/internal/api/dto"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/service"
	"github.com/quillworks/billing/internal/types"
)

type EntitlementHandler struct {
	svc    service.EntitlementService
	logger *logger.Logger
}

func NewEntitlementHandler(svc service.EntitlementService, logger *logger.Logger) *EntitlementHandler {
	return &EntitlementHandler{svc: svc, logger: logger}
}

// @Summary Get the caller's entitlement
// @Description Returns the current entitlement record for the authenticated user
// @Tags entitlements
// @Produce json
// @Success 200 {object} dto.EntitlementResponse
// @Router /entitlements/me [get]
func (h *EntitlementHandler) GetMyEntitlement(c *gin.Context) {
	ctx := c.Request.Context()
	userID := types.GetUserID(ctx)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ent, err := h.svc.GetUserEntitlement(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEntitlementResponse(ent))
}
