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

type CheckoutHandler struct {
	svc    service.CheckoutService
	logger *logger.Logger
}

func NewCheckoutHandler(svc service.CheckoutService, logger *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: logger}
}

// @Summary Create a checkout session
// @Description Starts a hosted checkout for the authenticated user on the given plan
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body dto.CreateCheckoutSessionRequest true "Checkout session request"
// @Success 200 {object} dto.CheckoutSessionResponse
// @Router /checkout/sessions [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID := types.GetUserID(ctx)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	session, err := h.svc.CreateSession(ctx, &service.CheckoutRequest{
		UserID:     userID,
		UserEmail:  types.GetUserEmail(ctx),
		PlanID:     req.PlanID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCheckoutSessionResponse(session))
}
