package middleware

import (
	"context"
	"time"

	"github.com/BlackJack-14/taskManager/internal/pkg/presence"

	"github.com/gin-gonic/gin"
)

// ActivityMiddleware marks the authenticated user as active. Must run after
// AuthMiddleware. A nil tracker turns it into a pass-through.
func ActivityMiddleware(tracker *presence.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, ok := c.Get("userID")
		if !ok {
			c.Next()
			return
		}
		userID, ok := userIDVal.(int)
		if !ok {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		_ = tracker.Touch(ctx, userID)

		c.Next()
	}
}
