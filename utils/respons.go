package utils

import (
	"errors"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var devMode atomic.Bool

// SetDevMode toggles inclusion of internal error details in responses.
func SetDevMode(enabled bool) { devMode.Store(enabled) }

func DevMode() bool { return devMode.Load() }

// RespondJSON writes the standard envelope. Keys of payload are merged into
// the top level next to success and message.
func RespondJSON(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{
		"success": code >= 200 && code < 300,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// RespondError translates err into the failure envelope. Errors that are not
// an *AppError are treated as internal.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}

	code := appErr.Kind.HTTPStatus()
	if appErr.Kind == KindInternal {
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
	}

	body := gin.H{
		"success": false,
		"message": appErr.Message,
	}
	if DevMode() && appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(code, body)
}
