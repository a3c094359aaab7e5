package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

type MovieService struct {
	repo     ports.MovieRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewMovieService(repo ports.MovieRepository, logger zerolog.Logger) *MovieService {
	return &MovieService{repo: repo, validate: newValidator(), logger: logger}
}

// Create validates the input and stores a movie owned by actor.
func (s *MovieService) Create(ctx context.Context, in ports.MovieInput, actor *domain.User) (*domain.Movie, error) {
	if actor == nil || actor.ID == "" {
		return nil, domain.ErrForbidden
	}

	rec := movieRecord{
		Title:       in.Title,
		Description: in.Description,
		ReleaseDate: in.ReleaseDate,
		Rating:      in.Rating,
		Category:    in.Category,
		Actors:      in.Actors,
		Poster:      in.Poster,
	}
	if err := checkStruct(s.validate, rec); err != nil {
		return nil, err
	}

	movie, err := rec.toMovie()
	if err != nil {
		return nil, err
	}
	movie.OwnerID = actor.ID

	created, err := s.repo.Create(ctx, movie)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", actor.ID).Msg("failed to create movie")
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.logger.Info().Str("movie_id", created.ID).Str("owner_id", actor.ID).Msg("movie created")
	return created, nil
}

func (s *MovieService) FindAll(ctx context.Context) ([]*domain.Movie, error) {
	movies, err := s.repo.List(ctx, ports.MovieFilter{})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

func (s *MovieService) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Movie, error) {
	movies, err := s.repo.List(ctx, ports.MovieFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list movies by owner: %w", err)
	}
	return movies, nil
}

// Update applies the fields present in patch. The merged record must satisfy
// the same constraints as Create; the owner never changes.
func (s *MovieService) Update(ctx context.Context, id string, patch ports.MoviePatch, actor *domain.User) (*domain.Movie, error) {
	current, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	merged := recordFromMovie(current)
	applyPatch(&merged, patch)
	if err := checkStruct(s.validate, merged); err != nil {
		return nil, err
	}

	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}
	if fields.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, current.ID, fields)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return nil, domain.ErrMovieNotFound
		}
		s.logger.Error().Err(err).Str("movie_id", id).Msg("failed to update movie")
		return nil, fmt.Errorf("update movie: %w", err)
	}

	s.logger.Info().Str("movie_id", updated.ID).Str("actor_id", actor.ID).Msg("movie updated")
	return updated, nil
}

// Delete removes the movie and returns it as it was before removal.
func (s *MovieService) Delete(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error) {
	current, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Delete(ctx, current.ID)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return nil, domain.ErrMovieNotFound
		}
		s.logger.Error().Err(err).Str("movie_id", id).Msg("failed to delete movie")
		return nil, fmt.Errorf("delete movie: %w", err)
	}

	s.logger.Info().Str("movie_id", removed.ID).Str("actor_id", actor.ID).Msg("movie deleted")
	return removed, nil
}

// authorize loads the movie and applies CanMutate.
func (s *MovieService) authorize(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("load movie: %w", err)
	}
	if !CanMutate(actor, movie) {
		s.logger.Warn().Str("movie_id", movie.ID).Str("actor_id", actor.ID).Msg("mutation denied")
		return nil, domain.ErrForbidden
	}
	return movie, nil
}
