package ports

import (
	"context"

	"github.com/moviehub/movie-service/internal/core/domain"
)

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// Executor runs CPU-bound work on a bounded set of workers.
type Executor interface {
	// Run blocks until fn has run or ctx is done.
	Run(ctx context.Context, fn func()) error
}

// RegisterInput carries a registration request. Role may be empty.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type TokenService interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
	// ResolveIdentity reloads the user a token refers to.
	ResolveIdentity(ctx context.Context, claims *domain.TokenClaims) (*domain.User, error)
}
