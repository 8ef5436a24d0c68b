package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillworks/billing/internal/api/dto"
	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/service"
	"github.com/quillworks/billing/internal/types"
)

type PortalHandler struct {
	svc    service.PortalService
	logger *logger.Logger
}

func NewPortalHandler(svc service.PortalService, logger *logger.Logger) *PortalHandler {
	return &PortalHandler{svc: svc, logger: logger}
}

// @Summary Create a billing portal session
// @Description Opens the provider-hosted billing portal for the authenticated user
// @Tags portal
// @Accept json
// @Produce json
// @Param request body dto.CreatePortalSessionRequest false "Portal session request"
// @Success 200 {object} dto.PortalSessionResponse
// @Router /portal/sessions [post]
func (h *PortalHandler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID := types.GetUserID(ctx)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// the body is optional; an absent one means provider defaults
	var req dto.CreatePortalSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request payload").
				Mark(ierr.ErrValidation))
			return
		}
	}

	session, err := h.svc.CreateSession(ctx, userID, req.ReturnURL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPortalSessionResponse(session))
}
