package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = contextKey("userID")
	aziendaIDKey = contextKey("aziendaID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, userIDKey)
}

// GetAziendaIDFromContext retrieves the azienda the caller acts for.
func GetAziendaIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, aziendaIDKey)
}

// WithIdentity returns a copy of ctx carrying the caller's user and azienda.
func WithIdentity(ctx context.Context, userID, aziendaID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, aziendaIDKey, aziendaID)
}

func stringFromContext(c *gin.Context, key contextKey) (string, bool) {
	if val, exists := c.Get(string(key)); exists {
		s, ok := val.(string)
		return s, ok && s != ""
	}
	// check in the request context as well
	s, ok := c.Request.Context().Value(key).(string)
	return s, ok && s != ""
}
