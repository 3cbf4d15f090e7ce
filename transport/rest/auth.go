package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const operatorContextKey = "operator"

// operatorAuth accepts "Authorization: Bearer <jwt>" issued by the auth service.
func (that *Server) operatorAuth() echo.MiddlewareFunc {
	log := that.logger.With("method", "operatorAuth")

	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			subject, err := that.auth.ParseToken(key)
			if err != nil {
				log.Warn("operator token refused", "error", err)
				return false, nil
			}

			c.Set(operatorContextKey, subject)

			return true, nil
		},
		ErrorHandler: func(_ error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "operator token required"})
		},
	})
}

func operatorFrom(c echo.Context) string {
	subject, _ := c.Get(operatorContextKey).(string)
	return subject
}
