package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/moviehub/movie-service/internal/core/ports"
)

// DefaultHashCost is the minimum bcrypt cost accepted by BcryptHasher.
const DefaultHashCost = 10

// BcryptHasher hashes passwords with bcrypt. When an executor is configured
// every hash and compare runs on it, off the request goroutine.
type BcryptHasher struct {
	cost int
	exec ports.Executor
}

// NewBcryptHasher returns a hasher with the given cost, raised to
// DefaultHashCost when lower. exec may be nil to hash inline.
func NewBcryptHasher(cost int, exec ports.Executor) *BcryptHasher {
	if cost < DefaultHashCost {
		cost = DefaultHashCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost, exec: exec}
}

func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest []byte
		err    error
	)
	if runErr := h.run(ctx, func() {
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); runErr != nil {
		return "", fmt.Errorf("hash password: %w", runErr)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// a malformed digest is an error.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}); runErr != nil {
		return false, fmt.Errorf("verify password: %w", runErr)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

func (h *BcryptHasher) run(ctx context.Context, fn func()) error {
	if h.exec == nil {
		fn()
		return nil
	}
	return h.exec.Run(ctx, fn)
}
