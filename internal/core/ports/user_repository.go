package ports

import (
	"context"

	"github.com/moviehub/movie-service/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness atomically and report a violation as domain.ErrUserExists.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
