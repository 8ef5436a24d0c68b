package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillworks/billing/internal/api/dto"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/service"
)

type PlanHandler struct {
	svc    service.PlanService
	logger *logger.Logger
}

func NewPlanHandler(svc service.PlanService, logger *logger.Logger) *PlanHandler {
	return &PlanHandler{svc: svc, logger: logger}
}

// @Summary List plans
// @Description Returns the active plan catalog with pricing metadata
// @Tags plans
// @Produce json
// @Success 200 {object} dto.ListPlansResponse
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.svc.ListActivePlans(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListPlansResponse(plans))
}
