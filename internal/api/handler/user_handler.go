package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// UserHandler exposes account lookups to administrators.
type UserHandler struct {
	identity ports.IdentityService
}

func NewUserHandler(identity ports.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// FindByEmail looks a user up by email.
//
// @Summary      Find user by email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  domain.User
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) FindByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return fail(c, domain.NewValidationError("email", "required", "email is required"))
	}

	user, err := h.identity.FindByEmail(c.Request().Context(), email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
