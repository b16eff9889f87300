package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"message": "..."}. Server errors are
// logged with their cause and answered with a generic message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := httpError(err)
		msg := fmt.Sprint(he.Message)
		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(cause))
			msg = "Internal server error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, map[string]string{"message": msg})
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
