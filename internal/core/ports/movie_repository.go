package ports

import (
	"context"

	"github.com/moviehub/movie-service/internal/core/domain"
)

// MovieFilter narrows a listing. The zero value matches every movie.
type MovieFilter struct {
	OwnerID string
}

// MovieRepository is the resource store. Every method is a single store
// operation; not-found is reported as domain.ErrMovieNotFound.
type MovieRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Movie, error)
	// List returns movies in natural storage order.
	List(ctx context.Context, filter MovieFilter) ([]*domain.Movie, error)
	Create(ctx context.Context, movie *domain.Movie) (*domain.Movie, error)
	// Update sets only the given fields and returns the stored result.
	Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error)
	// Delete removes the movie and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.Movie, error)
}
