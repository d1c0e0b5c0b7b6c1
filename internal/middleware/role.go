package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"note-service/internal/model"
	"note-service/pkg/logger"
)

// RequireRole rejects authenticated requests whose role does not match.
// It must run after Auth; a request with no claims is treated as
// unauthenticated, never as a role mismatch.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}
			if claims.Role != string(role) {
				logger.FromEcho(c).Warn("Insufficient role",
					zap.String("required", string(role)),
					zap.String("actual", claims.Role))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}
