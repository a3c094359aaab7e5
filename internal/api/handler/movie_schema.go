package handler

import (
	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// createMovieRequest is the body of POST /movies. releaseDate accepts an ISO
// 8601 date ("2010-07-16") or date-time.
type createMovieRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ReleaseDate string   `json:"releaseDate"`
	Rating      int      `json:"rating"`
	Category    string   `json:"category"`
	Actors      []string `json:"actors"`
	Poster      string   `json:"poster"`
}

// updateMovieRequest is the body of PUT/PATCH /movies/:id. Absent and null
// fields are left unchanged.
type updateMovieRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	ReleaseDate *string   `json:"releaseDate"`
	Rating      *int      `json:"rating"`
	Category    *string   `json:"category"`
	Actors      *[]string `json:"actors"`
	Poster      *string   `json:"poster"`
}

type movieListResponse struct {
	Movies []*domain.Movie `json:"movies"`
	Count  int             `json:"count"`
}

type deleteMovieResponse struct {
	Message string        `json:"message"`
	Movie   *domain.Movie `json:"movie"`
}

func (r createMovieRequest) toInput() ports.MovieInput {
	return ports.MovieInput{
		Title:       r.Title,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.Rating,
		Category:    r.Category,
		Actors:      r.Actors,
		Poster:      r.Poster,
	}
}

func (r updateMovieRequest) toPatch() ports.MoviePatch {
	return ports.MoviePatch{
		Title:       r.Title,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.Rating,
		Category:    r.Category,
		Actors:      r.Actors,
		Poster:      r.Poster,
	}
}

func newMovieList(movies []*domain.Movie) movieListResponse {
	if movies == nil {
		movies = []*domain.Movie{}
	}
	return movieListResponse{Movies: movies, Count: len(movies)}
}
