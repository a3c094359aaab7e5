package ports

import (
	"context"

	"github.com/moviehub/movie-service/internal/core/domain"
)

// MovieInput carries the fields of a new movie as submitted by a client.
// ReleaseDate is an ISO 8601 date or date-time.
type MovieInput struct {
	Title       string
	Description string
	ReleaseDate string
	Rating      int
	Category    string
	Actors      []string
	Poster      string
}

// MoviePatch carries a partial update; nil fields are left untouched.
type MoviePatch struct {
	Title       *string
	Description *string
	ReleaseDate *string
	Rating      *int
	Category    *string
	Actors      *[]string
	Poster      *string
}

// MovieService defines use-case operations for movies. Mutations require a
// resolved actor; reads are public.
type MovieService interface {
	Create(ctx context.Context, in MovieInput, actor *domain.User) (*domain.Movie, error)
	FindAll(ctx context.Context) ([]*domain.Movie, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Movie, error)
	Update(ctx context.Context, id string, patch MoviePatch, actor *domain.User) (*domain.Movie, error)
	Delete(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error)
}
