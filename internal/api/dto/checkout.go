package dto

import (
	"github.com/quillworks/billing/internal/interfaces"
)

// CreateCheckoutSessionRequest starts a hosted checkout for the caller
type CreateCheckoutSessionRequest struct {
	PlanID     string `json:"plan_id" binding:"required"`
	SuccessURL string `json:"success_url" binding:"omitempty,url"`
	CancelURL  string `json:"cancel_url" binding:"omitempty,url"`
}

// CheckoutSessionResponse carries the hosted checkout redirect
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewCheckoutSessionResponse(session *interfaces.CheckoutSession) *CheckoutSessionResponse {
	return &CheckoutSessionResponse{
		ID:  session.ID,
		URL: session.URL,
	}
}
