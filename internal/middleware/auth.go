package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"note-service/pkg/jwtutil"
	"note-service/pkg/logger"
	"note-service/prometheus"
)

const claimsContextKey = "claims"

// Auth validates the bearer token from the Authorization header and
// stores the decoded claims in the request context. Handlers behind it
// can rely on ClaimsFromContext returning a verified identity.
func Auth(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			SetClaims(c, claims)
			log.Debug("Request authenticated",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("tenant_id", claims.TenantID),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// SetClaims stores a verified claims set in the request context
func SetClaims(c echo.Context, claims *jwtutil.UserClaims) {
	c.Set(claimsContextKey, claims)
}

// ClaimsFromContext returns the verified claims set by Auth, or nil for
// an unauthenticated request
func ClaimsFromContext(c echo.Context) *jwtutil.UserClaims {
	if claims, ok := c.Get(claimsContextKey).(*jwtutil.UserClaims); ok {
		return claims
	}
	return nil
}
