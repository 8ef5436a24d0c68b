package dto

import (
	"github.com/quillworks/billing/internal/interfaces"
)

// CreatePortalSessionRequest opens the billing portal for the caller
type CreatePortalSessionRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

// PortalSessionResponse carries the billing portal redirect
type PortalSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewPortalSessionResponse(session *interfaces.PortalSession) *PortalSessionResponse {
	return &PortalSessionResponse{
		ID:  session.ID,
		URL: session.URL,
	}
}
