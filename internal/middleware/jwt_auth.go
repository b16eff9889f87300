package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/auth"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKey is where the verified claims are stored on the echo context
const ContextKey = "user"

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
func JWTAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return err
			}

			claims, err := auth.ParseToken(tokenString, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			// Store user claims in context
			c.Set(ContextKey, claims)

			return next(c)
		}
	}
}

// OptionalJWTMiddleware stores the claims when a valid token is sent and
// lets anonymous requests through. A bad token is treated as anonymous.
func OptionalJWTMiddleware(secret []byte, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}
			tokenString, err := bearerToken(header)
			if err != nil {
				return next(c)
			}
			claims, err := auth.ParseToken(tokenString, secret)
			if err != nil {
				log.Debug("ignoring invalid optional token", zap.Error(err))
				return next(c)
			}
			c.Set(ContextKey, claims)
			return next(c)
		}
	}
}

// Claims returns the claims stored by the JWT middlewares, or nil
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(ContextKey).(*models.JwtCustomClaims)
	return claims
}

func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
