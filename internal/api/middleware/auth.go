package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// IdentityKey is the echo.Context key holding the resolved *domain.User.
const IdentityKey = "identity"

// Auth verifies the bearer token, reloads the user it names and injects that
// user into the context. The stored role is authoritative, not the token.
// Every rejection wraps domain.ErrInvalidToken so the error handler renders
// the invalid_token kind.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return fmt.Errorf("missing authorization header: %w", domain.ErrInvalidToken)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return fmt.Errorf("malformed authorization header: %w", domain.ErrInvalidToken)
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					return err
				}
				return fmt.Errorf("verify token: %v: %w", err, domain.ErrInvalidToken)
			}

			user, err := tokens.ResolveIdentity(c.Request().Context(), claims)
			if errors.Is(err, domain.ErrUserNotFound) {
				return fmt.Errorf("token subject no longer exists: %w", domain.ErrInvalidToken)
			}
			if err != nil {
				return err
			}

			c.Set(IdentityKey, user)
			return next(c)
		}
	}
}

// Identity returns the user injected by Auth, or nil.
func Identity(c echo.Context) *domain.User {
	user, _ := c.Get(IdentityKey).(*domain.User)
	return user
}
