package service

import "github.com/moviehub/movie-service/internal/core/domain"

// CanMutate reports whether actor may update or delete movie: admins always,
// everyone else only for movies they own. Reads are never gated.
func CanMutate(actor *domain.User, movie *domain.Movie) bool {
	if actor == nil || movie == nil {
		return false
	}
	return actor.IsAdmin() || domain.SameID(movie.OwnerID, actor.ID)
}
