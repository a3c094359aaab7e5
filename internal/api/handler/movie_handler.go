package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/api/metrics"
	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// MovieHandler handles HTTP requests for movie operations.
type MovieHandler struct {
	service ports.MovieService
}

func NewMovieHandler(service ports.MovieService) *MovieHandler {
	return &MovieHandler{service: service}
}

// List returns every movie.
//
// @Summary      List movies
// @Tags         movies
// @Produce      json
// @Success      200  {object}  movieListResponse
// @Failure      500  {object}  errorResponse
// @Router       /movies [get]
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newMovieList(movies))
}

// ListByOwner returns the movies created by one user.
//
// @Summary      List movies by owner
// @Tags         movies
// @Produce      json
// @Param        userId  path      string  true  "Owner user ID"
// @Success      200     {object}  movieListResponse
// @Failure      500     {object}  errorResponse
// @Router       /movies/user/{userId} [get]
func (h *MovieHandler) ListByOwner(c echo.Context) error {
	movies, err := h.service.FindByOwner(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newMovieList(movies))
}

// Create adds a movie owned by the caller.
//
// @Summary      Create movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createMovieRequest  true  "Movie"
// @Success      201   {object}  domain.Movie
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /movies [post]
func (h *MovieHandler) Create(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return fail(c, err)
	}

	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.NewValidationError("body", "json", "invalid payload"))
	}

	movie, err := h.service.Create(c.Request().Context(), req.toInput(), actor)
	metrics.MovieMutationsTotal.WithLabelValues("create", resultLabel(err)).Inc()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, movie)
}

// Update changes the supplied fields of a movie. Only the owner or an admin
// may update.
//
// @Summary      Update movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Movie ID"
// @Param        body  body      updateMovieRequest  true  "Fields to change"
// @Success      200   {object}  domain.Movie
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /movies/{id} [put]
// @Router       /movies/{id} [patch]
func (h *MovieHandler) Update(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return fail(c, err)
	}

	var req updateMovieRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.NewValidationError("body", "json", "invalid payload"))
	}

	movie, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toPatch(), actor)
	metrics.MovieMutationsTotal.WithLabelValues("update", resultLabel(err)).Inc()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

// Delete removes a movie. Only the owner or an admin may delete.
//
// @Summary      Delete movie
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Movie ID"
// @Success      200 {object}  deleteMovieResponse
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /movies/{id} [delete]
func (h *MovieHandler) Delete(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return fail(c, err)
	}

	movie, err := h.service.Delete(c.Request().Context(), c.Param("id"), actor)
	metrics.MovieMutationsTotal.WithLabelValues("delete", resultLabel(err)).Inc()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, deleteMovieResponse{Message: "movie deleted", Movie: movie})
}
