package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/api/middleware"
	"github.com/moviehub/movie-service/internal/core/domain"
)

// ctxIdentity returns the user resolved by the Auth middleware. A missing
// identity means the route was wired without Auth; reject with 401.
func ctxIdentity(c echo.Context) (*domain.User, error) {
	user := middleware.Identity(c)
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("missing authentication: %w", domain.ErrInvalidToken)
	}
	return user, nil
}
