package service

import (
	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// toMovie converts a validated record; the owner is left for the caller.
func (r movieRecord) toMovie() (*domain.Movie, error) {
	released, err := parseDate(r.ReleaseDate)
	if err != nil {
		return nil, domain.NewValidationError("releaseDate", "isodate", "releaseDate must be an ISO 8601 date")
	}
	return &domain.Movie{
		Title:       r.Title,
		Description: r.Description,
		ReleaseDate: released,
		Rating:      r.Rating,
		Category:    domain.Category(r.Category),
		Actors:      append([]string{}, r.Actors...),
		Poster:      r.Poster,
	}, nil
}

func recordFromMovie(m *domain.Movie) movieRecord {
	return movieRecord{
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: formatDate(m.ReleaseDate),
		Rating:      m.Rating,
		Category:    string(m.Category),
		Actors:      m.Actors,
		Poster:      m.Poster,
	}
}

func applyPatch(r *movieRecord, p ports.MoviePatch) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ReleaseDate != nil {
		r.ReleaseDate = *p.ReleaseDate
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Actors != nil {
		r.Actors = *p.Actors
	}
	if p.Poster != nil {
		r.Poster = *p.Poster
	}
}

// patchFields converts the fields present in p into store fields. p must have
// passed validation as part of a merged record.
func patchFields(p ports.MoviePatch) (domain.MovieFields, error) {
	f := domain.MovieFields{
		Title:       p.Title,
		Description: p.Description,
		Rating:      p.Rating,
		Poster:      p.Poster,
	}
	if p.ReleaseDate != nil {
		released, err := parseDate(*p.ReleaseDate)
		if err != nil {
			return domain.MovieFields{}, domain.NewValidationError("releaseDate", "isodate", "releaseDate must be an ISO 8601 date")
		}
		f.ReleaseDate = &released
	}
	if p.Category != nil {
		c := domain.Category(*p.Category)
		f.Category = &c
	}
	if p.Actors != nil {
		f.Actors = append([]string{}, (*p.Actors)...)
		f.SetActors = true
	}
	return f, nil
}
