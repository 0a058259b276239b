package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-ordering/utils"
)

// AuditTrail records who performed a staff mutation such as a status change
// or payment settlement, and whether it succeeded.
func AuditTrail(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		userID, _ := CurrentUserID(c)
		fields := logrus.Fields{
			"action":   action,
			"user_id":  userID,
			"role":     CurrentRole(c),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("audit")
		} else {
			utils.ErrorLogger.WithFields(fields).Warn("audit: rejected")
		}
	}
}
