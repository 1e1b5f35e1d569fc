package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/taskmaster/todo/internal/adapters/http"
	"github.com/taskmaster/todo/internal/ports"
)

const invalidTokenMessage = "Missing or invalid token"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// authMiddleware validates bearer tokens and stores the caller's id
func (s *Server) authMiddleware(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := s.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))

			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				log.LogSecurityEvent("missing_token", "", c.RealIP(), map[string]interface{}{
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, invalidTokenMessage)
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				log.WithError(err).LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, invalidTokenMessage)
			}

			c.Set(httpHandlers.UserContextKey, claims.UserID)

			return next(c)
		}
	}
}
