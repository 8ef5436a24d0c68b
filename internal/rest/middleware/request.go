package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/quillworks/billing/internal/types"
)

// RequestIDMiddleware propagates (or mints) a request id into the request
// context and the response headers
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
